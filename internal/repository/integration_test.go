package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"lcfauto/internal/database"
	"lcfauto/internal/domain"
	"lcfauto/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// integrationDB opens the MySQL database named by LCFAUTO_TEST_DSN, or skips
// the test when the variable is unset. Each call wipes the tables the tests
// touch, so point the DSN at a throwaway schema.
func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("LCFAUTO_TEST_DSN")
	if dsn == "" {
		t.Skip("LCFAUTO_TEST_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening %s: %v", dsn, err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	for _, table := range []string{
		"loyalty_transactions", "invoice_items", "invoices",
		"quote_items", "quotes", "document_counters", "appointments", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clearing %s: %v", table, err)
		}
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Client Test", Email: email, Role: domain.RoleCustomer}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

func TestWelcomeBonusClaimIsAtomic(t *testing.T) {
	db := integrationDB(t)
	repo := NewLoyaltyRepository(db)
	u := createTestUser(t, db, "welcome@example.com")

	credited, err := repo.RecordWelcome(u.ID, 50, "Bonus de bienvenue")
	if err != nil {
		t.Fatalf("RecordWelcome: %v", err)
	}
	if !credited {
		t.Fatal("first RecordWelcome should credit")
	}
	credited, err = repo.RecordWelcome(u.ID, 50, "Bonus de bienvenue")
	if err != nil {
		t.Fatalf("RecordWelcome retry: %v", err)
	}
	if credited {
		t.Fatal("second RecordWelcome must be a no-op")
	}

	balance, err := repo.Balance(u.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 50 {
		t.Errorf("balance = %d, want 50", balance)
	}
	var count int64
	db.Model(&models.LoyaltyTransaction{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 1 {
		t.Errorf("ledger entries = %d, want 1", count)
	}
}

func TestAppointmentAwardClaimIsAtomic(t *testing.T) {
	db := integrationDB(t)
	repo := NewLoyaltyRepository(db)
	u := createTestUser(t, db, "award@example.com")
	appt := &models.Appointment{
		UserID:      u.ID,
		VehicleDesc: "Peugeot 308",
		Service:     "Vidange",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Status:      domain.AppointmentCompleted,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("creating appointment: %v", err)
	}

	for i, want := range []bool{true, false} {
		credited, err := repo.RecordForAppointment(u.ID, appt.ID, domain.LoyaltyTxAppointmentCompleted, 10, "Rendez-vous terminé", "")
		if err != nil {
			t.Fatalf("RecordForAppointment #%d: %v", i+1, err)
		}
		if credited != want {
			t.Fatalf("RecordForAppointment #%d credited = %v, want %v", i+1, credited, want)
		}
	}
	balance, _ := repo.Balance(u.ID)
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
}

func TestDebitGuardHoldsBalanceInvariant(t *testing.T) {
	db := integrationDB(t)
	repo := NewLoyaltyRepository(db)
	u := createTestUser(t, db, "debit@example.com")

	if _, err := repo.Record(u.ID, domain.LoyaltyTxManualAdjustment, 120, "ajustement", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := repo.Record(u.ID, domain.LoyaltyTxRewardRedemption, -150, "récompense", ""); err != ErrInsufficientPoints {
		t.Fatalf("overdraw err = %v, want ErrInsufficientPoints", err)
	}

	// the rejected debit must leave neither a ledger entry nor a balance change
	balance, _ := repo.Balance(u.ID)
	if balance != 120 {
		t.Errorf("balance after rejected debit = %d, want 120", balance)
	}
	var count int64
	db.Model(&models.LoyaltyTransaction{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 1 {
		t.Errorf("ledger entries = %d, want 1", count)
	}

	if _, err := repo.Record(u.ID, domain.LoyaltyTxRewardRedemption, -100, "récompense", ""); err != nil {
		t.Fatalf("valid debit: %v", err)
	}
	balance, _ = repo.Balance(u.ID)
	if balance != 20 {
		t.Errorf("balance = %d, want 20", balance)
	}

	drift, err := repo.FindBalanceDrift()
	if err != nil {
		t.Fatalf("FindBalanceDrift: %v", err)
	}
	if len(drift) != 0 {
		t.Errorf("drift rows = %v, want none", drift)
	}
}

func TestAcceptQuoteCreatesInvoiceAtomically(t *testing.T) {
	db := integrationDB(t)
	repo := NewBillingRepository(db)
	u := createTestUser(t, db, "quote@example.com")

	q := &models.Quote{
		UserID: u.ID,
		Items:  []models.QuoteItem{{Description: "Plaquettes avant", Quantity: 1, UnitCents: 14900}},
	}
	if err := repo.CreateQuote(q); err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	if _, err := repo.UpdateQuoteStatus(q.ID, domain.QuoteSent); err != nil {
		t.Fatalf("sending quote: %v", err)
	}

	accepted, inv, err := repo.AcceptQuote(q.ID, nil)
	if err != nil {
		t.Fatalf("AcceptQuote: %v", err)
	}
	if accepted.Status != domain.QuoteAccepted {
		t.Errorf("quote status = %q, want %q", accepted.Status, domain.QuoteAccepted)
	}
	if inv.QuoteID == nil || *inv.QuoteID != q.ID {
		t.Errorf("invoice QuoteID = %v, want %d", inv.QuoteID, q.ID)
	}
	if inv.Status != domain.InvoiceIssued {
		t.Errorf("invoice status = %q, want %q", inv.Status, domain.InvoiceIssued)
	}
	if inv.TotalCents != 14900 {
		t.Errorf("invoice total = %d, want 14900", inv.TotalCents)
	}
	if !strings.HasPrefix(inv.Number, domain.InvoiceNumberPrefix+"-") {
		t.Errorf("invoice number = %q", inv.Number)
	}

	// accepting again must fail without minting a second invoice
	if _, _, err := repo.AcceptQuote(q.ID, nil); err != ErrInvalidStatus {
		t.Fatalf("second AcceptQuote err = %v, want ErrInvalidStatus", err)
	}
	var count int64
	db.Model(&models.Invoice{}).Where("quote_id = ?", q.ID).Count(&count)
	if count != 1 {
		t.Errorf("invoices for quote = %d, want 1", count)
	}
}
