package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/middleware"
	"lcfauto/internal/models"
	"lcfauto/internal/repository"
	"lcfauto/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
	repo       *repository.AppointmentRepository
	loyaltySvc *service.LoyaltyService
	notifSvc   *service.NotificationService
}

func NewAppointmentHandler(repo *repository.AppointmentRepository, loyaltySvc *service.LoyaltyService, notifSvc *service.NotificationService) *AppointmentHandler {
	return &AppointmentHandler{repo: repo, loyaltySvc: loyaltySvc, notifSvc: notifSvc}
}

// Create books a new appointment for the current user. It starts PENDING
// until staff confirms the slot.
func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		VehicleDesc string    `json:"vehicle_desc" binding:"required,max=255"`
		Service     string    `json:"service" binding:"required,max=255"`
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
		Notes       string    `json:"notes" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ScheduledAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be in the future"})
		return
	}
	appt := &models.Appointment{
		UserID:      userID,
		VehicleDesc: req.VehicleDesc,
		Service:     req.Service,
		ScheduledAt: req.ScheduledAt,
		Status:      domain.AppointmentPending,
		Notes:       req.Notes,
	}
	if err := h.repo.Create(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking failed"})
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// ListMine returns the current user's appointments.
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parseLimitOffset(c)
	list, err := h.repo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// Cancel lets a customer cancel their own appointment before it is completed.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	appt, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	if appt.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your appointment"})
		return
	}
	updated, err := h.repo.UpdateStatus(uint(id), domain.AppointmentCancelled, 0)
	if err != nil {
		if err == repository.ErrInvalidTransition {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancellation failed"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- staff ---

// List returns all appointments, optionally filtered by status.
func (h *AppointmentHandler) List(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, total, err := h.repo.List(status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list, "total": total, "page": page})
}

// Get returns one appointment.
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	appt, err := h.repo.GetByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Confirm moves a PENDING appointment to CONFIRMED and notifies the customer.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	appt, err := h.repo.UpdateStatus(uint(id), domain.AppointmentConfirmed, 0)
	if err != nil {
		if err == repository.ErrInvalidTransition {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		return
	}
	if err := h.notifSvc.NotifyAppointmentConfirmed(appt.UserID, appt.ID); err != nil {
		log.Printf("[appointment] confirm notification for user %d: %v", appt.UserID, err)
	}
	c.JSON(http.StatusOK, appt)
}

// Complete closes an appointment with its final amount, credits loyalty
// points and notifies the customer. Points are awarded at most once per
// appointment, so retrying a failed request cannot double-credit.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		FinalAmountCents int64 `json:"final_amount_cents" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt, err := h.repo.UpdateStatus(uint(id), domain.AppointmentCompleted, req.FinalAmountCents)
	if err != nil {
		if err == repository.ErrInvalidTransition {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion failed"})
		return
	}
	if err := h.loyaltySvc.AwardAppointmentPoints(appt.UserID, appt.ID); err != nil {
		log.Printf("[appointment] loyalty award for appointment %d: %v", appt.ID, err)
	}
	if err := h.notifSvc.NotifyAppointmentCompleted(appt.UserID, appt.ID); err != nil {
		log.Printf("[appointment] completion notification for user %d: %v", appt.UserID, err)
	}
	c.JSON(http.StatusOK, appt)
}
