package models

import (
	"time"

	"gorm.io/gorm"
)

// Quote (devis) is an estimate sent to a customer before work is agreed.
type Quote struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Number     string         `gorm:"uniqueIndex;size:20;not null" json:"number"` // DEV-2026-0001
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Status     string         `gorm:"size:20;not null;index;default:'DRAFT'" json:"status"`
	TotalCents int64          `gorm:"not null;default:0" json:"total_cents"`
	ShareToken string         `gorm:"uniqueIndex;size:40;not null" json:"share_token"` // public read link
	ValidUntil *time.Time     `json:"valid_until"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

func (Quote) TableName() string { return "quotes" }

type QuoteItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	QuoteID     uint   `gorm:"not null;index" json:"quote_id"`
	Description string `gorm:"size:255;not null" json:"description"`
	Quantity    int    `gorm:"not null;default:1" json:"quantity"`
	UnitCents   int64  `gorm:"not null" json:"unit_cents"`
	TotalCents  int64  `gorm:"not null" json:"total_cents"`
}

func (QuoteItem) TableName() string { return "quote_items" }

// Invoice (facture) bills a customer, optionally materialized from an
// accepted quote.
type Invoice struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Number     string         `gorm:"uniqueIndex;size:20;not null" json:"number"` // FAC-2026-0001
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	QuoteID    *uint          `gorm:"index" json:"quote_id"`
	Status     string         `gorm:"size:20;not null;index;default:'DRAFT'" json:"status"`
	TotalCents int64          `gorm:"not null;default:0" json:"total_cents"`
	IssuedAt   *time.Time     `json:"issued_at"`
	DueAt      *time.Time     `json:"due_at"`
	PaidAt     *time.Time     `json:"paid_at"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User  User          `gorm:"foreignKey:UserID" json:"-"`
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	InvoiceID   uint   `gorm:"not null;index" json:"invoice_id"`
	Description string `gorm:"size:255;not null" json:"description"`
	Quantity    int    `gorm:"not null;default:1" json:"quantity"`
	UnitCents   int64  `gorm:"not null" json:"unit_cents"`
	TotalCents  int64  `gorm:"not null" json:"total_cents"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// DocumentCounter allocates sequential per-year quote/invoice numbers.
// Rows are locked for update while a number is being handed out.
type DocumentCounter struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Kind string `gorm:"size:10;not null;uniqueIndex:idx_counter_kind_year" json:"kind"` // DEV | FAC
	Year int    `gorm:"not null;uniqueIndex:idx_counter_kind_year" json:"year"`
	Next int    `gorm:"not null;default:1" json:"next"`
}

func (DocumentCounter) TableName() string { return "document_counters" }
