package repository

import (
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers            int64 `json:"total_users"`
	TotalCustomers        int64 `json:"total_customers"`
	PendingAppointments   int64 `json:"pending_appointments"`
	ConfirmedAppointments int64 `json:"confirmed_appointments"`
	CompletedAppointments int64 `json:"completed_appointments"`
	VehiclesForSale       int64 `json:"vehicles_for_sale"`
	VehiclesSold          int64 `json:"vehicles_sold"`
	OpenQuotes            int64 `json:"open_quotes"`
	UnpaidInvoices        int64 `json:"unpaid_invoices"`
	OutstandingPoints     int64 `json:"outstanding_points"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).Where("role = ?", domain.RoleCustomer).Count(&s.TotalCustomers)
	r.db.Model(&models.Appointment{}).Where("status = ?", domain.AppointmentPending).Count(&s.PendingAppointments)
	r.db.Model(&models.Appointment{}).Where("status = ?", domain.AppointmentConfirmed).Count(&s.ConfirmedAppointments)
	r.db.Model(&models.Appointment{}).Where("status = ?", domain.AppointmentCompleted).Count(&s.CompletedAppointments)
	r.db.Model(&models.Vehicle{}).Where("status = ?", domain.VehicleAvailable).Count(&s.VehiclesForSale)
	r.db.Model(&models.Vehicle{}).Where("status = ?", domain.VehicleSold).Count(&s.VehiclesSold)
	r.db.Model(&models.Quote{}).Where("status IN ?", []string{domain.QuoteDraft, domain.QuoteSent}).Count(&s.OpenQuotes)
	r.db.Model(&models.Invoice{}).Where("status = ?", domain.InvoiceIssued).Count(&s.UnpaidInvoices)

	var pts struct{ Total int64 }
	r.db.Model(&models.User{}).Select("COALESCE(SUM(loyalty_points), 0) as total").Where("loyalty_points > 0").Scan(&pts)
	s.OutstandingPoints = pts.Total

	return &s, nil
}

// UserSignupsByDay returns daily signup counts for the last N days.
func (r *AdminRepository) UserSignupsByDay(days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

// AppointmentsByDay returns daily appointment counts for the last N days.
func (r *AdminRepository) AppointmentsByDay(days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.Model(&models.Appointment{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}
