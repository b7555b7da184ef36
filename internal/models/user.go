package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:128;not null;default:''" json:"name"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone          string         `gorm:"size:32" json:"phone"`
	PasswordHash   string         `gorm:"size:255" json:"-"`
	Role           string         `gorm:"size:20;not null;index" json:"role"` // CUSTOMER | MECHANIC | ADMIN
	GoogleID       *string        `gorm:"uniqueIndex;size:255" json:"-"`      // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL      string         `gorm:"size:512" json:"avatar_url"`
	LoyaltyPoints  int            `gorm:"not null;default:0" json:"loyalty_points"` // denormalized ledger balance
	WelcomeBonusAt *time.Time     `json:"-"`                                        // set once when the welcome bonus is credited
	FCMToken       string         `gorm:"size:512" json:"-"`                        // for push notifications
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
