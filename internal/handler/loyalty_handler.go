package handler

import (
	"net/http"
	"strconv"

	"lcfauto/internal/middleware"
	"lcfauto/internal/repository"
	"lcfauto/internal/service"

	"github.com/gin-gonic/gin"
)

type LoyaltyHandler struct {
	svc  *service.LoyaltyService
	repo *repository.LoyaltyRepository
}

func NewLoyaltyHandler(svc *service.LoyaltyService, repo *repository.LoyaltyRepository) *LoyaltyHandler {
	return &LoyaltyHandler{svc: svc, repo: repo}
}

// GetBalance returns the current user's points balance and the redemption
// threshold so the app can show progress.
func (h *LoyaltyHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.svc.Balance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	settings, err := h.svc.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":                   balance,
		"min_points_for_redemption": settings.MinPointsForRedemption,
	})
}

// GetHistory returns the user's ledger entries, most recent first.
func (h *LoyaltyHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := parseLimitOffset(c)
	list, err := h.svc.History(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// Redeem spends points against a reward.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Points      int    `json:"points" binding:"required,gt=0"`
		Description string `json:"description" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.svc.Redeem(userID, req.Points, req.Description)
	if err != nil {
		switch err {
		case service.ErrRedemptionBelowMinimum:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case repository.ErrInsufficientPoints:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redemption failed"})
		}
		return
	}
	balance, _ := h.svc.Balance(userID)
	c.JSON(http.StatusOK, gin.H{"transaction": entry, "balance": balance})
}

// --- admin ---

// GetSettings returns the loyalty program configuration.
func (h *LoyaltyHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings lookup failed"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings merges a partial configuration update.
func (h *LoyaltyHandler) UpdateSettings(c *gin.Context) {
	var req service.LoyaltySettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.svc.UpdateSettings(req)
	if err != nil {
		if err == service.ErrInvalidSettingValue {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings update failed"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Adjust applies a manual admin correction to a user's balance.
func (h *LoyaltyHandler) Adjust(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Points      int    `json:"points" binding:"required"`
		Description string `json:"description" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.svc.Adjust(req.UserID, req.Points, req.Description)
	if err != nil {
		switch err {
		case service.ErrZeroPoints:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case repository.ErrInsufficientPoints:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "adjustment failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": entry})
}

// GetUserLedger returns another user's balance and history (admin view).
func (h *LoyaltyHandler) GetUserLedger(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	limit, offset := parseLimitOffset(c)
	balance, err := h.svc.Balance(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	list, err := h.svc.History(uint(id), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "transactions": list})
}

// GetDrift reports users whose denormalized balance no longer matches the
// ledger sum. Expected empty.
func (h *LoyaltyHandler) GetDrift(c *gin.Context) {
	rows, err := h.repo.FindBalanceDrift()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "drift check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drift": rows, "count": len(rows)})
}

func parseLimitOffset(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
