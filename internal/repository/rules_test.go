package repository

import (
	"testing"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"
)

func TestFormatDocumentNumber(t *testing.T) {
	tests := []struct {
		kind string
		year int
		seq  int
		want string
	}{
		{domain.QuoteNumberPrefix, 2026, 1, "DEV-2026-0001"},
		{domain.QuoteNumberPrefix, 2026, 42, "DEV-2026-0042"},
		{domain.InvoiceNumberPrefix, 2026, 1, "FAC-2026-0001"},
		{domain.InvoiceNumberPrefix, 2027, 9999, "FAC-2027-9999"},
		{domain.InvoiceNumberPrefix, 2026, 12345, "FAC-2026-12345"},
	}
	for _, tt := range tests {
		if got := FormatDocumentNumber(tt.kind, tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatDocumentNumber(%q, %d, %d) = %q, want %q", tt.kind, tt.year, tt.seq, got, tt.want)
		}
	}
}

func TestAppointmentTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{domain.AppointmentPending, domain.AppointmentConfirmed},
		{domain.AppointmentPending, domain.AppointmentCancelled},
		{domain.AppointmentConfirmed, domain.AppointmentCompleted},
		{domain.AppointmentConfirmed, domain.AppointmentCancelled},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to string }{
		{domain.AppointmentPending, domain.AppointmentCompleted}, // must be confirmed first
		{domain.AppointmentCompleted, domain.AppointmentCancelled},
		{domain.AppointmentCompleted, domain.AppointmentPending},
		{domain.AppointmentCancelled, domain.AppointmentConfirmed},
		{domain.AppointmentPending, domain.AppointmentPending},
	}
	for _, tt := range denied {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}

func TestInvoiceFromQuote(t *testing.T) {
	due := time.Now().AddDate(0, 0, 30)
	q := &models.Quote{
		ID:         7,
		UserID:     3,
		Status:     domain.QuoteAccepted,
		TotalCents: 24800,
		Notes:      "Plaquettes + disques avant",
		Items: []models.QuoteItem{
			{Description: "Plaquettes avant", Quantity: 1, UnitCents: 9900, TotalCents: 9900},
			{Description: "Disques avant", Quantity: 2, UnitCents: 7450, TotalCents: 14900},
		},
	}

	inv := invoiceFromQuote(q, "FAC-2026-0001", time.Now(), &due)
	if inv.QuoteID == nil || *inv.QuoteID != q.ID {
		t.Fatalf("QuoteID = %v, want %d", inv.QuoteID, q.ID)
	}
	if inv.Status != domain.InvoiceIssued {
		t.Errorf("Status = %q, want %q", inv.Status, domain.InvoiceIssued)
	}
	if inv.UserID != q.UserID {
		t.Errorf("UserID = %d, want %d", inv.UserID, q.UserID)
	}
	if inv.TotalCents != q.TotalCents {
		t.Errorf("TotalCents = %d, want %d", inv.TotalCents, q.TotalCents)
	}
	if inv.Number != "FAC-2026-0001" {
		t.Errorf("Number = %q", inv.Number)
	}
	if inv.IssuedAt == nil || inv.DueAt == nil || !inv.DueAt.Equal(due) {
		t.Errorf("IssuedAt = %v, DueAt = %v", inv.IssuedAt, inv.DueAt)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(inv.Items))
	}
	for i, it := range inv.Items {
		src := q.Items[i]
		if it.Description != src.Description || it.Quantity != src.Quantity ||
			it.UnitCents != src.UnitCents || it.TotalCents != src.TotalCents {
			t.Errorf("item %d = %+v, want copy of %+v", i, it, src)
		}
	}
}

func TestQuoteTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{domain.QuoteDraft, domain.QuoteSent},
		{domain.QuoteSent, domain.QuoteAccepted},
		{domain.QuoteSent, domain.QuoteRejected},
		{domain.QuoteSent, domain.QuoteExpired},
	}
	for _, tt := range allowed {
		if !canQuoteTransition(tt.from, tt.to) {
			t.Errorf("canQuoteTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to string }{
		{domain.QuoteDraft, domain.QuoteAccepted}, // must be sent first
		{domain.QuoteAccepted, domain.QuoteRejected},
		{domain.QuoteRejected, domain.QuoteSent},
		{domain.QuoteExpired, domain.QuoteAccepted},
	}
	for _, tt := range denied {
		if canQuoteTransition(tt.from, tt.to) {
			t.Errorf("canQuoteTransition(%s, %s) = true, want false", tt.from, tt.to)
		}
	}
}
