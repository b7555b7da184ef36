package models

import "time"

// LoyaltyTransaction is one entry in the append-only points ledger.
// Entries are never updated or deleted; the user's denormalized balance is
// adjusted in the same database transaction that creates the entry.
type LoyaltyTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"size:30;not null;index" json:"type"` // appointment_completed, manual_adjustment, reward_redemption, bonus
	Points      int       `gorm:"not null" json:"points"`             // positive = credit, negative = debit
	Description string    `gorm:"size:255" json:"description"`
	Reference   string    `gorm:"size:128;index" json:"reference"` // e.g. appointment_42, invoice_FAC-2026-0003
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LoyaltyTransaction) TableName() string { return "loyalty_transactions" }

// LoyaltySettings is the single admin-editable loyalty configuration row,
// always stored under SettingsID.
type LoyaltySettings struct {
	ID                     uint      `gorm:"primaryKey" json:"-"`
	PointsPerAppointment   int       `gorm:"not null;default:10" json:"points_per_appointment"`
	MinPointsForRedemption int       `gorm:"not null;default:100" json:"min_points_for_redemption"`
	WelcomeBonusPoints     int       `gorm:"not null;default:50" json:"welcome_bonus_points"`
	BirthdayBonusPoints    int       `gorm:"not null;default:0" json:"birthday_bonus_points"`
	ReferralBonusPoints    int       `gorm:"not null;default:0" json:"referral_bonus_points"`
	PointsPerEuroSpent     int       `gorm:"not null;default:0" json:"points_per_euro_spent"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (LoyaltySettings) TableName() string { return "loyalty_settings" }

// SettingsID is the fixed primary key of the singleton settings row.
const SettingsID uint = 1

// DefaultLoyaltySettings are used when the settings row has never been
// written. A missing row is a defaulting path, not an error.
func DefaultLoyaltySettings() LoyaltySettings {
	return LoyaltySettings{
		ID:                     SettingsID,
		PointsPerAppointment:   10,
		MinPointsForRedemption: 100,
		WelcomeBonusPoints:     50,
	}
}
