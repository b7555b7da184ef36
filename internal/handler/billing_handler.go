package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/middleware"
	"lcfauto/internal/models"
	"lcfauto/internal/repository"
	"lcfauto/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BillingHandler struct {
	repo       *repository.BillingRepository
	loyaltySvc *service.LoyaltyService
	notifSvc   *service.NotificationService
}

func NewBillingHandler(repo *repository.BillingRepository, loyaltySvc *service.LoyaltyService, notifSvc *service.NotificationService) *BillingHandler {
	return &BillingHandler{repo: repo, loyaltySvc: loyaltySvc, notifSvc: notifSvc}
}

type quoteItemRequest struct {
	Description string `json:"description" binding:"required,max=255"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	UnitCents   int64  `json:"unit_cents" binding:"required,gt=0"`
}

// CreateQuote drafts a new devis for a customer. The number and share token
// are assigned by the repository.
func (h *BillingHandler) CreateQuote(c *gin.Context) {
	var req struct {
		UserID     uint               `json:"user_id" binding:"required"`
		ValidUntil *time.Time         `json:"valid_until"`
		Notes      string             `json:"notes" binding:"max=1000"`
		Items      []quoteItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := &models.Quote{
		UserID:     req.UserID,
		Status:     domain.QuoteDraft,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
	}
	for _, it := range req.Items {
		q.Items = append(q.Items, models.QuoteItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCents:   it.UnitCents,
		})
	}
	if err := h.repo.CreateQuote(q); err != nil {
		if err == repository.ErrNoItems {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote creation failed"})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// SendQuote moves a DRAFT quote to SENT and notifies the customer with the
// share link.
func (h *BillingHandler) SendQuote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.repo.UpdateQuoteStatus(uint(id), domain.QuoteSent)
	if err != nil {
		if err == repository.ErrInvalidStatus {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sending failed"})
		return
	}
	if err := h.notifSvc.NotifyQuoteSent(q.UserID, q.Number); err != nil {
		log.Printf("[billing] quote notification for user %d: %v", q.UserID, err)
	}
	c.JSON(http.StatusOK, q)
}

// ListQuotes is the admin view.
func (h *BillingHandler) ListQuotes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.repo.ListQuotes(c.Query("status"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": list, "total": total, "page": page})
}

func (h *BillingHandler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.repo.GetQuote(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, q)
}

// GetQuoteByToken serves the public share link. No auth: the token is the
// capability.
func (h *BillingHandler) GetQuoteByToken(c *gin.Context) {
	q, err := h.repo.GetQuoteByShareToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		return
	}
	c.JSON(http.StatusOK, q)
}

// ListMyQuotes returns the current customer's quotes.
func (h *BillingHandler) ListMyQuotes(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parseLimitOffset(c)
	list, err := h.repo.ListQuotesByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": list})
}

// RespondToQuote lets the customer accept or reject a SENT quote. Accepting
// materializes an invoice immediately.
func (h *BillingHandler) RespondToQuote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.repo.GetQuote(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		return
	}
	if q.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your quote"})
		return
	}
	if q.ValidUntil != nil && q.ValidUntil.Before(time.Now()) {
		if _, err := h.repo.UpdateQuoteStatus(q.ID, domain.QuoteExpired); err != nil {
			log.Printf("[billing] expiring quote %d: %v", q.ID, err)
		}
		c.JSON(http.StatusConflict, gin.H{"error": "quote expired"})
		return
	}
	if !req.Accept {
		q, err = h.repo.UpdateQuoteStatus(q.ID, domain.QuoteRejected)
		if err != nil {
			if err == repository.ErrInvalidStatus {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, q)
		return
	}
	// Acceptance and invoice creation are one transaction: on failure the
	// quote stays SENT and the customer can retry.
	due := time.Now().AddDate(0, 0, 30)
	q, inv, err := h.repo.AcceptQuote(q.ID, &due)
	if err != nil {
		if err == repository.ErrInvalidStatus {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if err := h.notifSvc.NotifyInvoiceIssued(inv.UserID, inv.Number, inv.TotalCents); err != nil {
		log.Printf("[billing] invoice notification for user %d: %v", inv.UserID, err)
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "invoice": inv})
}

// --- invoices ---

// CreateInvoice drafts a standalone invoice (no prior quote).
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var req struct {
		UserID uint               `json:"user_id" binding:"required"`
		Notes  string             `json:"notes" binding:"max=1000"`
		Items  []quoteItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv := &models.Invoice{
		UserID: req.UserID,
		Status: domain.InvoiceDraft,
		Notes:  req.Notes,
	}
	for _, it := range req.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCents:   it.UnitCents,
		})
	}
	if err := h.repo.CreateInvoice(inv); err != nil {
		if err == repository.ErrNoItems {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice creation failed"})
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *BillingHandler) ListInvoices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.repo.ListInvoices(c.Query("status"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list, "total": total, "page": page})
}

func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inv, err := h.repo.GetInvoice(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ListMyInvoices returns the current customer's invoices.
func (h *BillingHandler) ListMyInvoices(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parseLimitOffset(c)
	list, err := h.repo.ListInvoicesByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list})
}

// IssueInvoice moves a DRAFT invoice to ISSUED and notifies the customer.
func (h *BillingHandler) IssueInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		DueAt *time.Time `json:"due_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.repo.MarkInvoiceIssued(uint(id), req.DueAt)
	if err != nil {
		if err == repository.ErrInvalidStatus {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issuing failed"})
		return
	}
	if err := h.notifSvc.NotifyInvoiceIssued(inv.UserID, inv.Number, inv.TotalCents); err != nil {
		log.Printf("[billing] invoice notification for user %d: %v", inv.UserID, err)
	}
	c.JSON(http.StatusOK, inv)
}

// PayInvoice records a payment, notifies the customer and credits loyalty
// points for the amount spent.
func (h *BillingHandler) PayInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inv, err := h.repo.MarkInvoicePaid(uint(id))
	if err != nil {
		if err == repository.ErrInvalidStatus {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment failed"})
		return
	}
	if err := h.notifSvc.NotifyInvoicePaid(inv.UserID, inv.Number); err != nil {
		log.Printf("[billing] payment notification for user %d: %v", inv.UserID, err)
	}
	if err := h.loyaltySvc.AwardInvoicePoints(inv.UserID, inv.Number, inv.TotalCents); err != nil {
		log.Printf("[billing] loyalty award for invoice %s: %v", inv.Number, err)
	}
	c.JSON(http.StatusOK, inv)
}

// VoidInvoice cancels an ISSUED invoice.
func (h *BillingHandler) VoidInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inv, err := h.repo.VoidInvoice(uint(id))
	if err != nil {
		if err == repository.ErrInvalidStatus {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "voiding failed"})
		return
	}
	c.JSON(http.StatusOK, inv)
}
