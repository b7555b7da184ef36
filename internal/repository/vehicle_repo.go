package repository

import (
	"lcfauto/internal/models"

	"gorm.io/gorm"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(v *models.Vehicle) error {
	return r.db.Create(v).Error
}

func (r *VehicleRepository) GetByID(id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VehicleFilter narrows the public catalog listing.
type VehicleFilter struct {
	Make          string
	Status        string
	MaxPriceCents int64
	MinYear       int
	MaxYear       int
}

func (r *VehicleRepository) List(f VehicleFilter, page, limit int) ([]models.Vehicle, int64, error) {
	q := r.db.Model(&models.Vehicle{})
	if f.Make != "" {
		q = q.Where("make = ?", f.Make)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MaxPriceCents > 0 {
		q = q.Where("price_cents <= ?", f.MaxPriceCents)
	}
	if f.MinYear > 0 {
		q = q.Where("year >= ?", f.MinYear)
	}
	if f.MaxYear > 0 {
		q = q.Where("year <= ?", f.MaxYear)
	}
	var total int64
	q.Count(&total)
	var list []models.Vehicle
	err := q.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *VehicleRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Vehicle{}).Where("id = ?", id).Updates(updates).Error
}

func (r *VehicleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).Delete(&models.VehicleImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Vehicle{}, id).Error
	})
}

func (r *VehicleRepository) AddImage(img *models.VehicleImage) error {
	return r.db.Create(img).Error
}

func (r *VehicleRepository) GetImage(vehicleID, imageID uint) (*models.VehicleImage, error) {
	var img models.VehicleImage
	err := r.db.Where("id = ? AND vehicle_id = ?", imageID, vehicleID).First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *VehicleRepository) DeleteImage(vehicleID, imageID uint) error {
	return r.db.Where("id = ? AND vehicle_id = ?", imageID, vehicleID).Delete(&models.VehicleImage{}).Error
}
