package service

import (
	"errors"
	"fmt"
	"log"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"
)

var (
	ErrInvalidSettingValue    = errors.New("setting values must be zero or positive")
	ErrRedemptionBelowMinimum = errors.New("points below redemption minimum")
	ErrZeroPoints             = errors.New("points must not be zero")
)

// LoyaltyStore is what the loyalty service needs from persistence. It is
// satisfied by repository.LoyaltyRepository; tests use an in-memory fake.
type LoyaltyStore interface {
	GetSettings() (*models.LoyaltySettings, error)
	UpdateSettings(updates map[string]interface{}) (*models.LoyaltySettings, error)
	Record(userID uint, txType string, points int, description, reference string) (*models.LoyaltyTransaction, error)
	RecordWelcome(userID uint, points int, description string) (bool, error)
	RecordForAppointment(userID, appointmentID uint, txType string, points int, description, reference string) (bool, error)
	Balance(userID uint) (int, error)
	History(userID uint, limit, offset int) ([]models.LoyaltyTransaction, error)
}

// loyaltyNotifier lets the service announce credits without depending on the
// full notification stack. May be nil.
type loyaltyNotifier interface {
	NotifyPointsCredited(userID uint, points int, description string) error
}

// LoyaltyService applies the points program rules on top of the ledger store.
type LoyaltyService struct {
	store    LoyaltyStore
	notifier loyaltyNotifier
}

func NewLoyaltyService(store LoyaltyStore, notifier loyaltyNotifier) *LoyaltyService {
	return &LoyaltyService{store: store, notifier: notifier}
}

func (s *LoyaltyService) Settings() (*models.LoyaltySettings, error) {
	return s.store.GetSettings()
}

// LoyaltySettingsUpdate is a partial update; nil fields are left untouched.
type LoyaltySettingsUpdate struct {
	PointsPerAppointment   *int `json:"points_per_appointment"`
	MinPointsForRedemption *int `json:"min_points_for_redemption"`
	WelcomeBonusPoints     *int `json:"welcome_bonus_points"`
	BirthdayBonusPoints    *int `json:"birthday_bonus_points"`
	ReferralBonusPoints    *int `json:"referral_bonus_points"`
	PointsPerEuroSpent     *int `json:"points_per_euro_spent"`
}

// UpdateSettings merges the provided fields into the singleton configuration.
// Negative values are rejected.
func (s *LoyaltyService) UpdateSettings(upd LoyaltySettingsUpdate) (*models.LoyaltySettings, error) {
	updates := make(map[string]interface{})
	fields := map[string]*int{
		"points_per_appointment":    upd.PointsPerAppointment,
		"min_points_for_redemption": upd.MinPointsForRedemption,
		"welcome_bonus_points":      upd.WelcomeBonusPoints,
		"birthday_bonus_points":     upd.BirthdayBonusPoints,
		"referral_bonus_points":     upd.ReferralBonusPoints,
		"points_per_euro_spent":     upd.PointsPerEuroSpent,
	}
	for column, v := range fields {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, ErrInvalidSettingValue
		}
		updates[column] = *v
	}
	return s.store.UpdateSettings(updates)
}

// AwardWelcomeBonus credits the welcome bonus once per user. A zero or unset
// bonus makes this a no-op, as does a repeat call for the same user.
func (s *LoyaltyService) AwardWelcomeBonus(userID uint) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return err
	}
	if settings.WelcomeBonusPoints <= 0 {
		return nil
	}
	credited, err := s.store.RecordWelcome(userID, settings.WelcomeBonusPoints, "Bonus de bienvenue")
	if err != nil {
		return err
	}
	if credited {
		s.notifyCredit(userID, settings.WelcomeBonusPoints, "Bonus de bienvenue")
	}
	return nil
}

// AwardAppointmentPoints credits the service bonus once per completed
// appointment.
func (s *LoyaltyService) AwardAppointmentPoints(userID, appointmentID uint) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return err
	}
	if settings.PointsPerAppointment <= 0 {
		return nil
	}
	desc := "Points fidélité - rendez-vous terminé"
	credited, err := s.store.RecordForAppointment(userID, appointmentID,
		domain.LoyaltyTxAppointmentCompleted, settings.PointsPerAppointment,
		desc, fmt.Sprintf("appointment_%d", appointmentID))
	if err != nil {
		return err
	}
	if credited {
		s.notifyCredit(userID, settings.PointsPerAppointment, desc)
	}
	return nil
}

// AwardInvoicePoints credits spend-based points when an invoice is paid,
// at PointsPerEuroSpent per whole euro. No-op when the rate is unset.
func (s *LoyaltyService) AwardInvoicePoints(userID uint, invoiceNumber string, totalCents int64) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return err
	}
	if settings.PointsPerEuroSpent <= 0 {
		return nil
	}
	points := int(totalCents/100) * settings.PointsPerEuroSpent
	if points <= 0 {
		return nil
	}
	desc := "Points fidélité - facture " + invoiceNumber
	if _, err := s.store.Record(userID, domain.LoyaltyTxBonus, points, desc, "invoice_"+invoiceNumber); err != nil {
		return err
	}
	s.notifyCredit(userID, points, desc)
	return nil
}

// Redeem spends points against a reward. The requested amount must meet the
// configured minimum and fit within the balance.
func (s *LoyaltyService) Redeem(userID uint, points int, description string) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrZeroPoints
	}
	settings, err := s.store.GetSettings()
	if err != nil {
		return nil, err
	}
	if points < settings.MinPointsForRedemption {
		return nil, ErrRedemptionBelowMinimum
	}
	if description == "" {
		description = "Utilisation de points fidélité"
	}
	return s.store.Record(userID, domain.LoyaltyTxRewardRedemption, -points, description, "")
}

// Adjust applies a manual admin correction, positive or negative.
func (s *LoyaltyService) Adjust(userID uint, points int, description string) (*models.LoyaltyTransaction, error) {
	if points == 0 {
		return nil, ErrZeroPoints
	}
	if description == "" {
		description = "Ajustement manuel"
	}
	entry, err := s.store.Record(userID, domain.LoyaltyTxManualAdjustment, points, description, "")
	if err != nil {
		return nil, err
	}
	if points > 0 {
		s.notifyCredit(userID, points, description)
	}
	return entry, nil
}

func (s *LoyaltyService) Balance(userID uint) (int, error) {
	return s.store.Balance(userID)
}

func (s *LoyaltyService) History(userID uint, limit, offset int) ([]models.LoyaltyTransaction, error) {
	return s.store.History(userID, limit, offset)
}

func (s *LoyaltyService) notifyCredit(userID uint, points int, description string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPointsCredited(userID, points, description); err != nil {
		log.Printf("[loyalty] notify user %d failed: %v", userID, err)
	}
}
