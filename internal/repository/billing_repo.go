package repository

import (
	"errors"
	"fmt"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidStatus = errors.New("invalid document status for this operation")
	ErrNoItems       = errors.New("document needs at least one line item")
)

// BillingRepository owns quotes, invoices, and the per-year number counters.
type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// FormatDocumentNumber renders "DEV-2026-0001" style numbers.
func FormatDocumentNumber(kind string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", kind, year, seq)
}

// nextNumber allocates the next sequential number for kind/year under a row
// lock, inside the caller's transaction.
func nextNumber(tx *gorm.DB, kind string, year int) (string, error) {
	var c models.DocumentCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND year = ?", kind, year).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = models.DocumentCounter{Kind: kind, Year: year, Next: 1}
		if err := tx.Create(&c).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	seq := c.Next
	if err := tx.Model(&models.DocumentCounter{}).Where("id = ?", c.ID).
		Update("next", seq+1).Error; err != nil {
		return "", err
	}
	return FormatDocumentNumber(kind, year, seq), nil
}

// CreateQuote assigns the next DEV number and a share token, totals the
// items, and persists everything in one transaction.
func (r *BillingRepository) CreateQuote(q *models.Quote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(q.Items) == 0 {
			return ErrNoItems
		}
		number, err := nextNumber(tx, domain.QuoteNumberPrefix, time.Now().Year())
		if err != nil {
			return err
		}
		q.Number = number
		q.ShareToken = uuid.NewString()
		q.Status = domain.QuoteDraft
		var total int64
		for i := range q.Items {
			q.Items[i].TotalCents = int64(q.Items[i].Quantity) * q.Items[i].UnitCents
			total += q.Items[i].TotalCents
		}
		q.TotalCents = total
		return tx.Create(q).Error
	})
}

func (r *BillingRepository) GetQuote(id uint) (*models.Quote, error) {
	var q models.Quote
	err := r.db.Preload("Items").First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *BillingRepository) GetQuoteByShareToken(token string) (*models.Quote, error) {
	var q models.Quote
	err := r.db.Preload("Items").Where("share_token = ?", token).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *BillingRepository) ListQuotesByUser(userID uint, limit, offset int) ([]models.Quote, error) {
	var list []models.Quote
	err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *BillingRepository) ListQuotes(status string, page, limit int) ([]models.Quote, int64, error) {
	q := r.db.Model(&models.Quote{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.Quote
	err := q.Preload("Items").Preload("User").
		Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

var quoteTransitions = map[string][]string{
	domain.QuoteDraft: {domain.QuoteSent},
	domain.QuoteSent:  {domain.QuoteAccepted, domain.QuoteRejected, domain.QuoteExpired},
}

func canQuoteTransition(from, to string) bool {
	for _, t := range quoteTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateQuoteStatus moves a quote along DRAFT -> SENT -> ACCEPTED/REJECTED/EXPIRED.
func (r *BillingRepository) UpdateQuoteStatus(id uint, to string) (*models.Quote, error) {
	var q models.Quote
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&q, id).Error; err != nil {
			return err
		}
		if !canQuoteTransition(q.Status, to) {
			return ErrInvalidStatus
		}
		q.Status = to
		return tx.Model(&q).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AcceptQuote flips a sent quote to ACCEPTED and materializes its invoice in
// the same transaction: if the FAC number or the invoice insert fails, the
// status flip rolls back and the quote stays SENT, so the customer can retry.
func (r *BillingRepository) AcceptQuote(quoteID uint, dueAt *time.Time) (*models.Quote, *models.Invoice, error) {
	var q models.Quote
	var inv models.Invoice
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&q, quoteID).Error; err != nil {
			return err
		}
		if !canQuoteTransition(q.Status, domain.QuoteAccepted) {
			return ErrInvalidStatus
		}
		if err := tx.Model(&q).Update("status", domain.QuoteAccepted).Error; err != nil {
			return err
		}
		q.Status = domain.QuoteAccepted
		number, err := nextNumber(tx, domain.InvoiceNumberPrefix, time.Now().Year())
		if err != nil {
			return err
		}
		inv = invoiceFromQuote(&q, number, time.Now(), dueAt)
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &q, &inv, nil
}

// invoiceFromQuote copies a quote's line items into a fresh ISSUED invoice
// linked back to the quote.
func invoiceFromQuote(q *models.Quote, number string, now time.Time, dueAt *time.Time) models.Invoice {
	qid := q.ID
	inv := models.Invoice{
		Number:     number,
		UserID:     q.UserID,
		QuoteID:    &qid,
		Status:     domain.InvoiceIssued,
		TotalCents: q.TotalCents,
		IssuedAt:   &now,
		DueAt:      dueAt,
		Notes:      q.Notes,
	}
	for _, it := range q.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCents:   it.UnitCents,
			TotalCents:  it.TotalCents,
		})
	}
	return inv
}

// CreateInvoice assigns the next FAC number and totals the items.
func (r *BillingRepository) CreateInvoice(inv *models.Invoice) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(inv.Items) == 0 {
			return ErrNoItems
		}
		number, err := nextNumber(tx, domain.InvoiceNumberPrefix, time.Now().Year())
		if err != nil {
			return err
		}
		inv.Number = number
		if inv.Status == "" {
			inv.Status = domain.InvoiceDraft
		}
		var total int64
		for i := range inv.Items {
			inv.Items[i].TotalCents = int64(inv.Items[i].Quantity) * inv.Items[i].UnitCents
			total += inv.Items[i].TotalCents
		}
		inv.TotalCents = total
		return tx.Create(inv).Error
	})
}

func (r *BillingRepository) GetInvoice(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Preload("Items").First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *BillingRepository) ListInvoicesByUser(userID uint, limit, offset int) ([]models.Invoice, error) {
	var list []models.Invoice
	err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *BillingRepository) ListInvoices(status string, page, limit int) ([]models.Invoice, int64, error) {
	q := r.db.Model(&models.Invoice{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.Invoice
	err := q.Preload("Items").Preload("User").
		Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

// MarkInvoiceIssued moves a draft invoice to ISSUED.
func (r *BillingRepository) MarkInvoiceIssued(id uint, dueAt *time.Time) (*models.Invoice, error) {
	return r.updateInvoice(id, domain.InvoiceDraft, func(now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": domain.InvoiceIssued, "issued_at": &now, "due_at": dueAt}
	})
}

// MarkInvoicePaid moves an issued invoice to PAID.
func (r *BillingRepository) MarkInvoicePaid(id uint) (*models.Invoice, error) {
	return r.updateInvoice(id, domain.InvoiceIssued, func(now time.Time) map[string]interface{} {
		return map[string]interface{}{"status": domain.InvoicePaid, "paid_at": &now}
	})
}

// VoidInvoice voids a draft or issued invoice.
func (r *BillingRepository) VoidInvoice(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&inv, id).Error; err != nil {
			return err
		}
		if inv.Status != domain.InvoiceDraft && inv.Status != domain.InvoiceIssued {
			return ErrInvalidStatus
		}
		inv.Status = domain.InvoiceVoid
		return tx.Model(&inv).Update("status", domain.InvoiceVoid).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *BillingRepository) updateInvoice(id uint, requiredStatus string, build func(now time.Time) map[string]interface{}) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&inv, id).Error; err != nil {
			return err
		}
		if inv.Status != requiredStatus {
			return ErrInvalidStatus
		}
		updates := build(time.Now())
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("Items").First(&inv, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
