package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

// CarRequest represents the request body for creating or updating a car
type CarRequest struct {
	PlateNumber string  `json:"plate_number" binding:"required"`
	VIN         string  `json:"vin" binding:"required"`
	Note        *string `json:"note"`
	CarModelID  uint    `json:"car_model_id" binding:"required"`
	CustomerID  *uint   `json:"customer_id"`
}

// decorateCar fills the computed image URL from the attachment store
func decorateCar(car *models.Car) {
	if car.ImageKey == nil || *car.ImageKey == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	url, err := imageService.GetImageURL(*car.ImageKey)
	if err != nil {
		log.Printf("Failed to generate image URL for car %d: %v", car.ID, err)
		return
	}
	if url != "" {
		car.ImageURL = &url
	}
}

// ListCars handles GET /api/v1/cars - lists cars with pagination and optional
// plate/VIN search
func ListCars(c *gin.Context) {
	db := config.GetDB()
	page, perPage, offset := pagination(c)

	query := db.Model(&models.Car{})
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("plate_number LIKE ? OR vin LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var cars []models.Car
	if err := query.Preload("CarModel").Preload("Customer").
		Order("id ASC").
		Offset(offset).Limit(perPage).
		Find(&cars).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	for i := range cars {
		decorateCar(&cars[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     cars,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// ListMyCars handles GET /api/v1/cars/my - lists the caller's cars
func ListMyCars(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var cars []models.Car
	if err := db.Where("customer_id = ?", user.ID).
		Preload("CarModel").
		Order("id ASC").
		Find(&cars).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	for i := range cars {
		decorateCar(&cars[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cars,
	})
}

// GetCar handles GET /api/v1/cars/:id
func GetCar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var car models.Car
	if err := db.Preload("CarModel").Preload("Customer").First(&car, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	decorateCar(&car)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    car,
	})
}

// CreateCar handles POST /api/v1/cars. A customer registers a car for
// themselves; a mechanic may assign any customer or leave the car
// unassigned. The customer reference is passed explicitly, never taken from
// ambient state.
func CreateCar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req CarRequest
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

	if req.Note != nil && len(*req.Note) > models.MaxNoteLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Note is too long",
			},
		})
		return
	}

	customerID := req.CustomerID
	if user.Role != "mechanic" {
		// customers can only register cars for themselves
		customerID = &user.ID
	}

	db := config.GetDB()

	var carModel models.CarModel
	if err := db.First(&carModel, req.CarModelID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car model not found",
			},
		})
		return
	}

	car := models.Car{
		PlateNumber: req.PlateNumber,
		VIN:         req.VIN,
		Note:        req.Note,
		CarModelID:  req.CarModelID,
		CustomerID:  customerID,
	}

	if err := db.Create(&car).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if err := db.Preload("CarModel").Preload("Customer").First(&car, car.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    car,
	})
}

// UpdateCar handles PUT /api/v1/cars/:id. Customers may edit only their own
// cars; mechanics may edit any car and reassign the customer.
func UpdateCar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	if user.Role != "mechanic" && (car.CustomerID == nil || *car.CustomerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to edit this car",
			},
		})
		return
	}

	var req CarRequest
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

	if req.Note != nil && len(*req.Note) > models.MaxNoteLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Note is too long",
			},
		})
		return
	}

	var carModel models.CarModel
	if err := db.First(&carModel, req.CarModelID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car model not found",
			},
		})
		return
	}

	car.PlateNumber = req.PlateNumber
	car.VIN = req.VIN
	car.Note = req.Note
	car.CarModelID = req.CarModelID
	if user.Role == "mechanic" {
		car.CustomerID = req.CustomerID
	}

	if err := db.Save(&car).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if err := db.Preload("CarModel").Preload("Customer").First(&car, car.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	decorateCar(&car)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    car,
	})
}

// DeleteCar handles DELETE /api/v1/cars/:id (mechanics only). Deletion
// cascades to the car's orders and removes the stored image.
func DeleteCar(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	if err := services.DeleteCar(c.Request.Context(), db, id); err != nil {
		respondServiceError(c, err)
		return
	}

	// The image lives out of band; remove it after the store commit
	if car.ImageKey != nil {
		if imageService := services.GetImageService(); imageService != nil {
			if err := imageService.DeleteImage(*car.ImageKey); err != nil {
				log.Printf("Failed to delete image for car %d: %v", id, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Car deleted",
	})
}

// UploadCarImage handles POST /api/v1/cars/:id/image - stores a car photo in
// the attachment store and records its key
func UploadCarImage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	if user.Role != "mechanic" && (car.CustomerID == nil || *car.CustomerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to edit this car",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Image file is required",
			},
		})
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Image storage is not configured",
			},
		})
		return
	}

	imageKey, err := imageService.UploadImage(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Replace a previously stored image
	oldKey := car.ImageKey
	car.ImageKey = &imageKey
	if err := db.Save(&car).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if oldKey != nil && *oldKey != imageKey {
		if err := imageService.DeleteImage(*oldKey); err != nil {
			log.Printf("Failed to delete previous image for car %d: %v", id, err)
		}
	}

	decorateCar(&car)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    car,
	})
}

// DeleteCarImage handles DELETE /api/v1/cars/:id/image
func DeleteCarImage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	if user.Role != "mechanic" && (car.CustomerID == nil || *car.CustomerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to edit this car",
			},
		})
		return
	}

	if car.ImageKey != nil {
		if imageService := services.GetImageService(); imageService != nil {
			if err := imageService.DeleteImage(*car.ImageKey); err != nil {
				log.Printf("Failed to delete image for car %d: %v", id, err)
			}
		}
		car.ImageKey = nil
		if err := db.Save(&car).Error; err != nil {
			respondServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Car image removed",
	})
}
