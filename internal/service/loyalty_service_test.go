package service

import (
	"testing"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"
	"lcfauto/internal/repository"
)

// fakeLoyaltyStore mirrors the repository semantics in memory: every write
// appends a ledger entry and moves the balance in the same step.
type fakeLoyaltyStore struct {
	settings models.LoyaltySettings
	ledger   map[uint][]models.LoyaltyTransaction
	balances map[uint]int
	welcomed map[uint]bool
	awarded  map[uint]bool // keyed by appointment ID
	nextID   uint
}

func newFakeLoyaltyStore() *fakeLoyaltyStore {
	return &fakeLoyaltyStore{
		settings: models.DefaultLoyaltySettings(),
		ledger:   make(map[uint][]models.LoyaltyTransaction),
		balances: make(map[uint]int),
		welcomed: make(map[uint]bool),
		awarded:  make(map[uint]bool),
	}
}

func (f *fakeLoyaltyStore) GetSettings() (*models.LoyaltySettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeLoyaltyStore) UpdateSettings(updates map[string]interface{}) (*models.LoyaltySettings, error) {
	for column, v := range updates {
		n := v.(int)
		switch column {
		case "points_per_appointment":
			f.settings.PointsPerAppointment = n
		case "min_points_for_redemption":
			f.settings.MinPointsForRedemption = n
		case "welcome_bonus_points":
			f.settings.WelcomeBonusPoints = n
		case "birthday_bonus_points":
			f.settings.BirthdayBonusPoints = n
		case "referral_bonus_points":
			f.settings.ReferralBonusPoints = n
		case "points_per_euro_spent":
			f.settings.PointsPerEuroSpent = n
		}
	}
	s := f.settings
	return &s, nil
}

func (f *fakeLoyaltyStore) Record(userID uint, txType string, points int, description, reference string) (*models.LoyaltyTransaction, error) {
	if points < 0 && f.balances[userID]+points < 0 {
		return nil, repository.ErrInsufficientPoints
	}
	f.nextID++
	entry := models.LoyaltyTransaction{
		ID:          f.nextID,
		UserID:      userID,
		Type:        txType,
		Points:      points,
		Description: description,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}
	f.ledger[userID] = append(f.ledger[userID], entry)
	f.balances[userID] += points
	return &entry, nil
}

func (f *fakeLoyaltyStore) RecordWelcome(userID uint, points int, description string) (bool, error) {
	if f.welcomed[userID] {
		return false, nil
	}
	f.welcomed[userID] = true
	_, err := f.Record(userID, domain.LoyaltyTxBonus, points, description, "")
	return err == nil, err
}

func (f *fakeLoyaltyStore) RecordForAppointment(userID, appointmentID uint, txType string, points int, description, reference string) (bool, error) {
	if f.awarded[appointmentID] {
		return false, nil
	}
	f.awarded[appointmentID] = true
	_, err := f.Record(userID, txType, points, description, reference)
	return err == nil, err
}

func (f *fakeLoyaltyStore) Balance(userID uint) (int, error) {
	return f.balances[userID], nil
}

func (f *fakeLoyaltyStore) History(userID uint, limit, offset int) ([]models.LoyaltyTransaction, error) {
	entries := f.ledger[userID]
	out := make([]models.LoyaltyTransaction, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLoyaltyStore) ledgerSum(userID uint) int {
	sum := 0
	for _, e := range f.ledger[userID] {
		sum += e.Points
	}
	return sum
}

type recordedNotification struct {
	userID uint
	points int
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (f *fakeNotifier) NotifyPointsCredited(userID uint, points int, description string) error {
	f.sent = append(f.sent, recordedNotification{userID: userID, points: points})
	return nil
}

func TestDefaultSettings(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	s, err := svc.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.PointsPerAppointment != 10 {
		t.Errorf("PointsPerAppointment = %d, want 10", s.PointsPerAppointment)
	}
	if s.MinPointsForRedemption != 100 {
		t.Errorf("MinPointsForRedemption = %d, want 100", s.MinPointsForRedemption)
	}
	if s.WelcomeBonusPoints != 50 {
		t.Errorf("WelcomeBonusPoints = %d, want 50", s.WelcomeBonusPoints)
	}
}

func TestUpdateSettingsRejectsNegative(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	bad := -5
	if _, err := svc.UpdateSettings(LoyaltySettingsUpdate{WelcomeBonusPoints: &bad}); err != ErrInvalidSettingValue {
		t.Fatalf("err = %v, want ErrInvalidSettingValue", err)
	}
}

func TestUpdateSettingsPartialMerge(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	min := 200
	s, err := svc.UpdateSettings(LoyaltySettingsUpdate{MinPointsForRedemption: &min})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if s.MinPointsForRedemption != 200 {
		t.Errorf("MinPointsForRedemption = %d, want 200", s.MinPointsForRedemption)
	}
	// Untouched fields keep their defaults.
	if s.PointsPerAppointment != 10 {
		t.Errorf("PointsPerAppointment = %d, want 10", s.PointsPerAppointment)
	}
	if s.WelcomeBonusPoints != 50 {
		t.Errorf("WelcomeBonusPoints = %d, want 50", s.WelcomeBonusPoints)
	}
}

func TestWelcomeBonusCreditedOnce(t *testing.T) {
	store := newFakeLoyaltyStore()
	notifier := &fakeNotifier{}
	svc := NewLoyaltyService(store, notifier)

	if err := svc.AwardWelcomeBonus(1); err != nil {
		t.Fatalf("first award: %v", err)
	}
	if err := svc.AwardWelcomeBonus(1); err != nil {
		t.Fatalf("second award: %v", err)
	}

	balance, _ := svc.Balance(1)
	if balance != 50 {
		t.Errorf("balance = %d, want 50", balance)
	}
	if n := len(store.ledger[1]); n != 1 {
		t.Errorf("ledger entries = %d, want 1", n)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.sent))
	}
}

func TestWelcomeBonusZeroIsNoop(t *testing.T) {
	store := newFakeLoyaltyStore()
	store.settings.WelcomeBonusPoints = 0
	svc := NewLoyaltyService(store, nil)

	if err := svc.AwardWelcomeBonus(1); err != nil {
		t.Fatalf("AwardWelcomeBonus: %v", err)
	}
	if balance, _ := svc.Balance(1); balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestAppointmentPointsCreditedOncePerAppointment(t *testing.T) {
	store := newFakeLoyaltyStore()
	svc := NewLoyaltyService(store, nil)

	if err := svc.AwardAppointmentPoints(1, 42); err != nil {
		t.Fatalf("first award: %v", err)
	}
	if err := svc.AwardAppointmentPoints(1, 42); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := svc.AwardAppointmentPoints(1, 43); err != nil {
		t.Fatalf("second appointment: %v", err)
	}

	balance, _ := svc.Balance(1)
	if balance != 20 {
		t.Errorf("balance = %d, want 20", balance)
	}
}

func TestBalanceMatchesLedgerSum(t *testing.T) {
	store := newFakeLoyaltyStore()
	svc := NewLoyaltyService(store, nil)

	if _, err := svc.Adjust(1, 10, ""); err != nil {
		t.Fatalf("adjust +10: %v", err)
	}
	if _, err := svc.Adjust(1, 10, ""); err != nil {
		t.Fatalf("adjust +10: %v", err)
	}
	if _, err := svc.Adjust(1, -5, ""); err != nil {
		t.Fatalf("adjust -5: %v", err)
	}

	balance, _ := svc.Balance(1)
	if balance != 15 {
		t.Errorf("balance = %d, want 15", balance)
	}
	if sum := store.ledgerSum(1); sum != balance {
		t.Errorf("ledger sum %d != balance %d", sum, balance)
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)

	svc.Adjust(1, 10, "first")
	svc.Adjust(1, 10, "second")
	svc.Adjust(1, -5, "third")

	history, err := svc.History(1, 10, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("entries = %d, want 3", len(history))
	}
	if history[0].Description != "third" || history[2].Description != "first" {
		t.Errorf("unexpected order: %q ... %q", history[0].Description, history[2].Description)
	}
}

func TestRedeemBelowMinimum(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	svc.Adjust(1, 500, "seed")

	if _, err := svc.Redeem(1, 50, ""); err != ErrRedemptionBelowMinimum {
		t.Fatalf("err = %v, want ErrRedemptionBelowMinimum", err)
	}
}

func TestRedeemInsufficientBalance(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	svc.Adjust(1, 120, "seed")

	if _, err := svc.Redeem(1, 150, ""); err != repository.ErrInsufficientPoints {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
	if balance, _ := svc.Balance(1); balance != 120 {
		t.Errorf("balance = %d, want 120 (unchanged)", balance)
	}
}

func TestRedeemDebitsLedger(t *testing.T) {
	store := newFakeLoyaltyStore()
	svc := NewLoyaltyService(store, nil)
	svc.Adjust(1, 250, "seed")

	entry, err := svc.Redeem(1, 100, "Vidange offerte")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if entry.Points != -100 {
		t.Errorf("entry points = %d, want -100", entry.Points)
	}
	if entry.Type != domain.LoyaltyTxRewardRedemption {
		t.Errorf("entry type = %q, want %q", entry.Type, domain.LoyaltyTxRewardRedemption)
	}
	if balance, _ := svc.Balance(1); balance != 150 {
		t.Errorf("balance = %d, want 150", balance)
	}
	if sum := store.ledgerSum(1); sum != 150 {
		t.Errorf("ledger sum = %d, want 150", sum)
	}
}

func TestAdjustRejectsZero(t *testing.T) {
	svc := NewLoyaltyService(newFakeLoyaltyStore(), nil)
	if _, err := svc.Adjust(1, 0, ""); err != ErrZeroPoints {
		t.Fatalf("err = %v, want ErrZeroPoints", err)
	}
}

func TestInvoicePointsUseSpendRate(t *testing.T) {
	store := newFakeLoyaltyStore()
	store.settings.PointsPerEuroSpent = 2
	svc := NewLoyaltyService(store, nil)

	// 149.99 EUR -> 149 whole euros -> 298 points.
	if err := svc.AwardInvoicePoints(1, "FAC-2026-0001", 14999); err != nil {
		t.Fatalf("AwardInvoicePoints: %v", err)
	}
	if balance, _ := svc.Balance(1); balance != 298 {
		t.Errorf("balance = %d, want 298", balance)
	}
}

func TestInvoicePointsNoopWithoutRate(t *testing.T) {
	store := newFakeLoyaltyStore()
	svc := NewLoyaltyService(store, nil)

	if err := svc.AwardInvoicePoints(1, "FAC-2026-0002", 10000); err != nil {
		t.Fatalf("AwardInvoicePoints: %v", err)
	}
	if balance, _ := svc.Balance(1); balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}
