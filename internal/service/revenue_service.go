package service

import (
	"errors"
	"time"

	"lcfauto/internal/domain"
)

var ErrUnknownPeriod = errors.New("unknown revenue period")

// revenueSource is satisfied by repository.AppointmentRepository.
type revenueSource interface {
	RevenueBetween(start, end time.Time) (totalCents int64, completed int64, err error)
}

type RevenueReport struct {
	Period                string    `json:"period"`
	Start                 time.Time `json:"start"`
	End                   time.Time `json:"end"`
	TotalRevenueCents     int64     `json:"total_revenue_cents"`
	CompletedAppointments int64     `json:"completed_appointments"`
}

type RevenueService struct {
	source revenueSource
}

func NewRevenueService(source revenueSource) *RevenueService {
	return &RevenueService{source: source}
}

// PeriodRange resolves a reporting period to a half-open [start, end) range
// around the anchor time. The fiscal year is calendar-aligned for this
// business; do not generalize without new requirements.
func PeriodRange(period string, anchor time.Time) (start, end time.Time, err error) {
	switch period {
	case domain.PeriodMonthly:
		start = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		end = start.AddDate(0, 1, 0)
	case domain.PeriodAnnual, domain.PeriodFiscal:
		start = time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, anchor.Location())
		end = start.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, ErrUnknownPeriod
	}
	return start, end, nil
}

// Report sums completed-appointment revenue over the period containing
// anchor. An empty period reports zero revenue and zero appointments.
func (s *RevenueService) Report(period string, anchor time.Time) (*RevenueReport, error) {
	start, end, err := PeriodRange(period, anchor)
	if err != nil {
		return nil, err
	}
	total, completed, err := s.source.RevenueBetween(start, end)
	if err != nil {
		return nil, err
	}
	return &RevenueReport{
		Period:                period,
		Start:                 start,
		End:                   end,
		TotalRevenueCents:     total,
		CompletedAppointments: completed,
	}, nil
}
