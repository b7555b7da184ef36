package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is a car listed for sale on the public catalog.
type Vehicle struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Make        string         `gorm:"size:64;not null;index" json:"make"`
	Model       string         `gorm:"size:64;not null" json:"model"`
	Year        int            `gorm:"not null;index" json:"year"`
	PriceCents  int64          `gorm:"not null" json:"price_cents"`
	MileageKm   int            `gorm:"not null;default:0" json:"mileage_km"`
	Fuel        string         `gorm:"size:20" json:"fuel"`    // essence, diesel, hybride, electrique
	Gearbox     string         `gorm:"size:20" json:"gearbox"` // manuelle, automatique
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;not null;index;default:'AVAILABLE'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Images []VehicleImage `gorm:"foreignKey:VehicleID" json:"images,omitempty"`
}

func (Vehicle) TableName() string { return "vehicles" }

type VehicleImage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	VehicleID    uint           `gorm:"not null;index" json:"vehicle_id"`
	URL          string         `gorm:"size:512;not null" json:"url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	PublicID     string         `gorm:"size:255" json:"-"` // Cloudinary public ID
	Position     int            `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (VehicleImage) TableName() string { return "vehicle_images" }
