package models

import (
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	VehicleDesc      string         `gorm:"size:128;not null" json:"vehicle_desc"` // e.g. "Renault Clio IV 1.5 dCi"
	Service          string         `gorm:"size:128;not null" json:"service"`      // e.g. "Vidange + filtres"
	ScheduledAt      time.Time      `gorm:"not null;index" json:"scheduled_at"`
	Status           string         `gorm:"size:20;not null;index;default:'PENDING'" json:"status"`
	Notes            string         `gorm:"type:text" json:"notes"`
	FinalAmountCents int64          `gorm:"not null;default:0" json:"final_amount_cents"` // set when completed
	CompletedAt      *time.Time     `json:"completed_at"`
	PointsAwardedAt  *time.Time     `json:"-"` // guards double loyalty credit for the same appointment
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Appointment) TableName() string { return "appointments" }
