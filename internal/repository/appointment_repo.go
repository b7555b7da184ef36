package repository

import (
	"errors"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"

	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid appointment status transition")

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(a *models.Appointment) error {
	return r.db.Create(a).Error
}

func (r *AppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) ListByUser(userID uint, limit, offset int) ([]models.Appointment, error) {
	var list []models.Appointment
	err := r.db.Where("user_id = ?", userID).
		Order("scheduled_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// List returns appointments with optional status filter, newest first.
func (r *AppointmentRepository) List(status string, page, limit int) ([]models.Appointment, int64, error) {
	q := r.db.Model(&models.Appointment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.Appointment
	err := q.Preload("User").Order("scheduled_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

// allowed transitions: PENDING -> CONFIRMED/CANCELLED, CONFIRMED -> COMPLETED/CANCELLED
var transitions = map[string][]string{
	domain.AppointmentPending:   {domain.AppointmentConfirmed, domain.AppointmentCancelled},
	domain.AppointmentConfirmed: {domain.AppointmentCompleted, domain.AppointmentCancelled},
}

func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves an appointment to a new status, enforcing the allowed
// transitions. Completion records the final amount and completion time.
func (r *AppointmentRepository) UpdateStatus(id uint, to string, finalAmountCents int64) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		if !CanTransition(a.Status, to) {
			return ErrInvalidTransition
		}
		updates := map[string]interface{}{"status": to}
		if to == domain.AppointmentCompleted {
			now := time.Now()
			updates["final_amount_cents"] = finalAmountCents
			updates["completed_at"] = &now
		}
		if err := tx.Model(&a).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&a, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RevenueBetween sums completed-appointment revenue in [start, end).
func (r *AppointmentRepository) RevenueBetween(start, end time.Time) (totalCents int64, completed int64, err error) {
	var agg struct {
		Total int64
		Count int64
	}
	err = r.db.Model(&models.Appointment{}).
		Select("COALESCE(SUM(final_amount_cents), 0) as total, COUNT(*) as count").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", domain.AppointmentCompleted, start, end).
		Scan(&agg).Error
	return agg.Total, agg.Count, err
}
