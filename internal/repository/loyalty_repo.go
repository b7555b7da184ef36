package repository

import (
	"errors"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// LoyaltyRepository owns the points ledger, the denormalized balance on the
// user row, and the singleton settings row. Every mutating operation runs the
// ledger append and the balance adjustment in one database transaction, with
// the balance changed by an atomic SQL increment, so the invariant
// "balance == SUM(ledger points)" holds even under concurrent awards.
type LoyaltyRepository struct {
	db *gorm.DB
}

func NewLoyaltyRepository(db *gorm.DB) *LoyaltyRepository {
	return &LoyaltyRepository{db: db}
}

// GetSettings returns the singleton configuration row, or the hard-coded
// defaults when it has never been written. A missing row is not an error.
func (r *LoyaltyRepository) GetSettings() (*models.LoyaltySettings, error) {
	var s models.LoyaltySettings
	err := r.db.First(&s, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultLoyaltySettings()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings merges the given column updates into the singleton row,
// creating it from defaults first when absent. Fields not present in updates
// keep their current values.
func (r *LoyaltyRepository) UpdateSettings(updates map[string]interface{}) (*models.LoyaltySettings, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var s models.LoyaltySettings
		err := tx.First(&s, models.SettingsID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s = models.DefaultLoyaltySettings()
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.LoyaltySettings{}).Where("id = ?", models.SettingsID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetSettings()
}

// Record appends a ledger entry for userID and adjusts the balance by points
// in the same transaction. Debits that would drive the balance negative are
// rejected with ErrInsufficientPoints.
func (r *LoyaltyRepository) Record(userID uint, txType string, points int, description, reference string) (*models.LoyaltyTransaction, error) {
	entry := &models.LoyaltyTransaction{
		UserID:      userID,
		Type:        txType,
		Points:      points,
		Description: description,
		Reference:   reference,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return r.append(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordWelcome credits the welcome bonus exactly once per user. The
// welcome_bonus_at column doubles as the idempotency guard: the conditional
// update claims it atomically, so a second call is a no-op rather than a
// double credit.
func (r *LoyaltyRepository) RecordWelcome(userID uint, points int, description string) (bool, error) {
	credited := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND welcome_bonus_at IS NULL", userID).
			Update("welcome_bonus_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already credited, or user gone
		}
		credited = true
		return r.append(tx, &models.LoyaltyTransaction{
			UserID:      userID,
			Type:        domain.LoyaltyTxBonus,
			Points:      points,
			Description: description,
		})
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

// RecordForAppointment credits service points once per appointment. The
// points_awarded_at column on the appointment row is the idempotency guard,
// claimed in the same transaction as the ledger append.
func (r *LoyaltyRepository) RecordForAppointment(userID, appointmentID uint, txType string, points int, description, reference string) (bool, error) {
	credited := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND user_id = ? AND points_awarded_at IS NULL", appointmentID, userID).
			Update("points_awarded_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		credited = true
		return r.append(tx, &models.LoyaltyTransaction{
			UserID:      userID,
			Type:        txType,
			Points:      points,
			Description: description,
			Reference:   reference,
		})
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

// append creates the ledger entry and applies the balance delta inside the
// caller's transaction.
func (r *LoyaltyRepository) append(tx *gorm.DB, entry *models.LoyaltyTransaction) error {
	if entry.Points < 0 {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, entry.UserID).Error; err != nil {
			return err
		}
		if u.LoyaltyPoints+entry.Points < 0 {
			return ErrInsufficientPoints
		}
	}
	if err := tx.Create(entry).Error; err != nil {
		return err
	}
	res := tx.Model(&models.User{}).Where("id = ?", entry.UserID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", entry.Points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Balance reads the denormalized loyalty_points field. An absent user reads
// as zero, never as an error.
func (r *LoyaltyRepository) Balance(userID uint) (int, error) {
	var u models.User
	err := r.db.Select("loyalty_points").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return u.LoyaltyPoints, nil
}

// History returns a user's ledger entries, most recent first.
func (r *LoyaltyRepository) History(userID uint, limit, offset int) ([]models.LoyaltyTransaction, error) {
	var list []models.LoyaltyTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// BalanceDrift reports one row per user whose denormalized balance differs
// from the ledger sum. Expected to be empty; kept as an operational check.
type BalanceDrift struct {
	UserID    uint `json:"user_id"`
	Balance   int  `json:"balance"`
	LedgerSum int  `json:"ledger_sum"`
}

func (r *LoyaltyRepository) FindBalanceDrift() ([]BalanceDrift, error) {
	var rows []BalanceDrift
	err := r.db.Raw(`
		SELECT u.id AS user_id, u.loyalty_points AS balance, COALESCE(SUM(t.points), 0) AS ledger_sum
		FROM users u
		LEFT JOIN loyalty_transactions t ON t.user_id = u.id
		WHERE u.deleted_at IS NULL
		GROUP BY u.id, u.loyalty_points
		HAVING balance <> ledger_sum`).Scan(&rows).Error
	return rows, err
}
