package service

import (
	"testing"
	"time"

	"lcfauto/internal/domain"
)

func TestPeriodRange(t *testing.T) {
	anchor := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			period:    domain.PeriodMonthly,
			wantStart: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			period:    domain.PeriodAnnual,
			wantStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			period:    domain.PeriodFiscal,
			wantStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := PeriodRange(tt.period, anchor)
			if err != nil {
				t.Fatalf("PeriodRange: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestPeriodRangeDecemberRollsOver(t *testing.T) {
	anchor := time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC)
	start, end, err := PeriodRange(domain.PeriodMonthly, anchor)
	if err != nil {
		t.Fatalf("PeriodRange: %v", err)
	}
	if start.Month() != time.December || start.Year() != 2026 {
		t.Errorf("start = %v, want December 2026", start)
	}
	if end.Month() != time.January || end.Year() != 2027 {
		t.Errorf("end = %v, want January 2027", end)
	}
}

func TestPeriodRangeUnknownPeriod(t *testing.T) {
	if _, _, err := PeriodRange("weekly", time.Now()); err != ErrUnknownPeriod {
		t.Fatalf("err = %v, want ErrUnknownPeriod", err)
	}
}

type fakeRevenueSource struct {
	totalCents int64
	completed  int64
	gotStart   time.Time
	gotEnd     time.Time
}

func (f *fakeRevenueSource) RevenueBetween(start, end time.Time) (int64, int64, error) {
	f.gotStart, f.gotEnd = start, end
	return f.totalCents, f.completed, nil
}

func TestReport(t *testing.T) {
	source := &fakeRevenueSource{totalCents: 123450, completed: 7}
	svc := NewRevenueService(source)

	anchor := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	report, err := svc.Report(domain.PeriodMonthly, anchor)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalRevenueCents != 123450 {
		t.Errorf("TotalRevenueCents = %d, want 123450", report.TotalRevenueCents)
	}
	if report.CompletedAppointments != 7 {
		t.Errorf("CompletedAppointments = %d, want 7", report.CompletedAppointments)
	}
	if source.gotStart.Month() != time.June || source.gotEnd.Month() != time.July {
		t.Errorf("queried range %v - %v, want June - July", source.gotStart, source.gotEnd)
	}
}

func TestReportEmptyPeriod(t *testing.T) {
	svc := NewRevenueService(&fakeRevenueSource{})
	report, err := svc.Report(domain.PeriodAnnual, time.Now())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalRevenueCents != 0 || report.CompletedAppointments != 0 {
		t.Errorf("empty period reported %d cents / %d appointments, want 0 / 0",
			report.TotalRevenueCents, report.CompletedAppointments)
	}
}
