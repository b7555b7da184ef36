package handler

import (
	"net/http"
	"strconv"
	"time"

	"lcfauto/internal/domain"
	"lcfauto/internal/middleware"
	"lcfauto/internal/repository"
	"lcfauto/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	adminRepo  *repository.AdminRepository
	userRepo   *repository.UserRepository
	auditRepo  *repository.AuditLogRepository
	revenueSvc *service.RevenueService
}

func NewAdminHandler(adminRepo *repository.AdminRepository, userRepo *repository.UserRepository, auditRepo *repository.AuditLogRepository, revenueSvc *service.RevenueService) *AdminHandler {
	return &AdminHandler{adminRepo: adminRepo, userRepo: userRepo, auditRepo: auditRepo, revenueSvc: revenueSvc}
}

// Dashboard returns the counters shown on the admin home screen.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Revenue reports completed-appointment revenue for a monthly, annual or
// fiscal period anchored at ?date= (defaults to today).
func (h *AdminHandler) Revenue(c *gin.Context) {
	period := c.DefaultQuery("period", domain.PeriodMonthly)
	anchor := time.Now()
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		anchor = parsed
	}
	report, err := h.revenueSvc.Report(period, anchor)
	if err != nil {
		if err == service.ErrUnknownPeriod {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Signups returns daily user signup counts for the chart.
func (h *AdminHandler) Signups(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 || days > 365 {
		days = 30
	}
	points, err := h.adminRepo.UserSignupsByDay(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "timeseries failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "days": days})
}

// AppointmentVolume returns daily appointment counts for the chart.
func (h *AdminHandler) AppointmentVolume(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 || days > 365 {
		days = 30
	}
	points, err := h.adminRepo.AppointmentsByDay(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "timeseries failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "days": days})
}

// ListUsers searches and pages over all accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, total, err := h.userRepo.List(c.Query("search"), c.Query("role"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateUserRole promotes or demotes an account. Admins cannot demote
// themselves, which keeps at least one admin reachable.
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Role {
	case domain.RoleCustomer, domain.RoleMechanic, domain.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if uint(id) == middleware.GetUserID(c) && req.Role != domain.RoleAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot demote yourself"})
		return
	}
	if err := h.userRepo.UpdateFields(uint(id), map[string]interface{}{"role": req.Role}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// AuditLogs pages over the audit trail.
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, total, err := h.auditRepo.List(c.Query("action"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total, "page": page})
}
