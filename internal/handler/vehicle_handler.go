package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"lcfauto/internal/domain"
	"lcfauto/internal/models"
	"lcfauto/internal/repository"
	"lcfauto/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleHandler struct {
	repo         *repository.VehicleRepository
	cloudy       cloudinary.Client
	uploadFolder string
}

func NewVehicleHandler(repo *repository.VehicleRepository, cloudy cloudinary.Client, uploadFolder string) *VehicleHandler {
	return &VehicleHandler{repo: repo, cloudy: cloudy, uploadFolder: uploadFolder}
}

// List is public: customers browse the cars for sale without an account.
func (h *VehicleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	maxPrice, _ := strconv.ParseInt(c.Query("max_price_cents"), 10, 64)
	minYear, _ := strconv.Atoi(c.Query("min_year"))
	maxYear, _ := strconv.Atoi(c.Query("max_year"))

	filter := repository.VehicleFilter{
		Make:          c.Query("make"),
		Status:        c.DefaultQuery("status", domain.VehicleAvailable),
		MaxPriceCents: maxPrice,
		MinYear:       minYear,
		MaxYear:       maxYear,
	}
	list, total, err := h.repo.List(filter, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": list, "total": total, "page": page})
}

// Get is public.
func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	v, err := h.repo.GetByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// --- admin ---

type vehicleRequest struct {
	Make        string `json:"make" binding:"required,max=100"`
	Model       string `json:"model" binding:"required,max=100"`
	Year        int    `json:"year" binding:"required,gte=1950"`
	PriceCents  int64  `json:"price_cents" binding:"required,gt=0"`
	MileageKm   int    `json:"mileage_km" binding:"gte=0"`
	Fuel        string `json:"fuel" binding:"max=30"`
	Gearbox     string `json:"gearbox" binding:"max=30"`
	Description string `json:"description" binding:"max=5000"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := &models.Vehicle{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PriceCents:  req.PriceCents,
		MileageKm:   req.MileageKm,
		Fuel:        req.Fuel,
		Gearbox:     req.Gearbox,
		Description: req.Description,
		Status:      domain.VehicleAvailable,
	}
	if err := h.repo.Create(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creation failed"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Make        *string `json:"make"`
		Model       *string `json:"model"`
		Year        *int    `json:"year"`
		PriceCents  *int64  `json:"price_cents"`
		MileageKm   *int    `json:"mileage_km"`
		Fuel        *string `json:"fuel"`
		Gearbox     *string `json:"gearbox"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Make != nil {
		updates["make"] = *req.Make
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.MileageKm != nil {
		updates["mileage_km"] = *req.MileageKm
	}
	if req.Fuel != nil {
		updates["fuel"] = *req.Fuel
	}
	if req.Gearbox != nil {
		updates["gearbox"] = *req.Gearbox
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.VehicleAvailable, domain.VehicleReserved, domain.VehicleSold:
			updates["status"] = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	if err := h.repo.Update(uint(id), updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	v, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	v, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	// Drop the Cloudinary assets first; a leftover image is worse than a
	// leftover row.
	for _, img := range v.Images {
		if img.PublicID == "" {
			continue
		}
		if err := h.cloudy.Delete(c.Request.Context(), img.PublicID); err != nil {
			log.Printf("[vehicle] cloudinary delete %s: %v", img.PublicID, err)
		}
	}
	if err := h.repo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deletion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}

// UploadImage accepts a multipart photo, pushes it to Cloudinary and stores
// the resulting URLs.
func (h *VehicleHandler) UploadImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if _, err := h.repo.GetByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	if fileHeader.Size > 10<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large (max 10MB)"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read upload"})
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("vehicle_%d_%s", id, uuid.NewString())
	url, thumbURL, err := h.cloudy.UploadImage(c.Request.Context(), file, h.uploadFolder, publicID)
	if err != nil {
		log.Printf("[vehicle] cloudinary upload: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	position, _ := strconv.Atoi(c.DefaultPostForm("position", "0"))
	img := &models.VehicleImage{
		VehicleID:    uint(id),
		URL:          url,
		ThumbnailURL: thumbURL,
		PublicID:     publicID,
		Position:     position,
	}
	if err := h.repo.AddImage(img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image save failed"})
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *VehicleHandler) DeleteImage(c *gin.Context) {
	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	imageID, err := strconv.ParseUint(c.Param("imageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}
	img, err := h.repo.GetImage(uint(vehicleID), uint(imageID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	if img.PublicID != "" {
		if err := h.cloudy.Delete(c.Request.Context(), img.PublicID); err != nil {
			log.Printf("[vehicle] cloudinary delete %s: %v", img.PublicID, err)
		}
	}
	if err := h.repo.DeleteImage(uint(vehicleID), uint(imageID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deletion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}
