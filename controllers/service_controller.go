package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

// ServiceRequest represents the request body for creating or updating a
// catalog service
type ServiceRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

// ListServices handles GET /api/v1/services - lists the service catalog with
// pagination and optional name search
func ListServices(c *gin.Context) {
	db := config.GetDB()
	page, perPage, offset := pagination(c)

	query := db.Model(&models.Service{})
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var catalog []models.Service
	if err := query.Order("name ASC").
		Offset(offset).Limit(perPage).
		Find(&catalog).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     catalog,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// GetService handles GET /api/v1/services/:id
func GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var service models.Service
	if err := db.First(&service, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Service not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// CreateService handles POST /api/v1/services (mechanics only)
func CreateService(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Price must not be negative",
			},
		})
		return
	}

	service := models.Service{
		Name:  req.Name,
		Price: req.Price.Round(services.MoneyScale),
	}

	db := config.GetDB()
	if err := db.Create(&service).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}

// UpdateService handles PUT /api/v1/services/:id (mechanics only). Price
// changes do not retroactively affect already-billed entries.
func UpdateService(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Price must not be negative",
			},
		})
		return
	}

	db := config.GetDB()
	var service models.Service
	if err := db.First(&service, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Service not found",
			},
		})
		return
	}

	service.Name = req.Name
	service.Price = req.Price.Round(services.MoneyScale)

	if err := db.Save(&service).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// DeleteService handles DELETE /api/v1/services/:id (mechanics only).
// Deletion cascades to order entries billed for this service and re-derives
// the affected order sums.
func DeleteService(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteService(c.Request.Context(), config.GetDB(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service deleted",
	})
}
