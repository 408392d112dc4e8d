package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

// CarModelRequest represents the request body for creating or updating a car model
type CarModelRequest struct {
	Make   string  `json:"make" binding:"required"`
	Model  string  `json:"model" binding:"required"`
	Engine *string `json:"engine"`
	Year   int     `json:"year" binding:"required,gt=0"`
}

// ListCarModels handles GET /api/v1/car-models - lists car models with
// pagination and optional make/model search
func ListCarModels(c *gin.Context) {
	db := config.GetDB()
	page, perPage, offset := pagination(c)

	query := db.Model(&models.CarModel{})
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("make LIKE ? OR model LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var carModels []models.CarModel
	if err := query.Order("make ASC, model ASC").
		Offset(offset).Limit(perPage).
		Find(&carModels).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     carModels,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// GetCarModel handles GET /api/v1/car-models/:id
func GetCarModel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var carModel models.CarModel
	if err := db.First(&carModel, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car model not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    carModel,
	})
}

// CreateCarModel handles POST /api/v1/car-models (mechanics only)
func CreateCarModel(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	var req CarModelRequest
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

	carModel := models.CarModel{
		Make:   req.Make,
		Model:  req.Model,
		Engine: req.Engine,
		Year:   req.Year,
	}

	db := config.GetDB()
	if err := db.Create(&carModel).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    carModel,
	})
}

// UpdateCarModel handles PUT /api/v1/car-models/:id (mechanics only)
func UpdateCarModel(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CarModelRequest
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

	db := config.GetDB()
	var carModel models.CarModel
	if err := db.First(&carModel, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car model not found",
			},
		})
		return
	}

	carModel.Make = req.Make
	carModel.Model = req.Model
	carModel.Engine = req.Engine
	carModel.Year = req.Year

	if err := db.Save(&carModel).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    carModel,
	})
}

// DeleteCarModel handles DELETE /api/v1/car-models/:id (mechanics only).
// Deletion cascades to the model's cars and their orders.
func DeleteCarModel(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteCarModel(c.Request.Context(), config.GetDB(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Car model deleted",
	})
}
