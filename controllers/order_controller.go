package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

// CreateOrderRequest represents the request body for registering an order
type CreateOrderRequest struct {
	CarID   uint       `json:"car_id" binding:"required"`
	DueBack *time.Time `json:"due_back"`
}

// UpdateOrderRequest represents the request body for changing an order's
// status or due-back date. Status transitions are free-form within the
// enumeration domain.
type UpdateOrderRequest struct {
	Status  *models.OrderStatus `json:"status"`
	DueBack *time.Time          `json:"due_back"`
}

// ownsOrder reports whether the user is the customer of the order's car
func ownsOrder(user *models.User, order *models.Order) bool {
	return order.Car.CustomerID != nil && *order.Car.CustomerID == user.ID
}

// ListOrders handles GET /api/v1/orders - lists orders with pagination,
// optional status filter and overdue filter
func ListOrders(c *gin.Context) {
	db := config.GetDB()
	page, perPage, offset := pagination(c)

	query := db.Model(&models.Order{})
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var orders []models.Order
	if err := query.Preload("Car").Preload("Car.CarModel").Preload("Car.Customer").
		Order("date ASC, id ASC").
		Offset(offset).Limit(perPage).
		Find(&orders).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	for i := range orders {
		orders[i].Decorate(now)
	}

	// Overdue is derived from the due-back date and status, so it is filtered
	// in memory rather than in SQL
	if c.Query("overdue") == "true" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Overdue {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     orders,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// ListMyOrders handles GET /api/v1/orders/my - lists orders on the caller's
// cars
func ListMyOrders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var orders []models.Order
	if err := db.
		Joins("JOIN cars ON cars.id = orders.car_id").
		Where("cars.customer_id = ?", user.ID).
		Preload("Car").Preload("Car.CarModel").
		Order("orders.date ASC, orders.id ASC").
		Find(&orders).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	for i := range orders {
		orders[i].Decorate(now)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - order detail with entries
// (ordered by service name) and comments (newest first)
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Car").Preload("Car.CarModel").Preload("Car.Customer").
		First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	entries, err := services.GetLedger().ListEntries(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order.Entries = entries

	if err := db.Where("order_id = ?", id).
		Preload("Commenter").
		Order("created_at DESC, id DESC").
		Find(&order.Comments).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	order.Decorate(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateOrder handles POST /api/v1/orders - registers an order against a car
// with zero sum and status Registered
func CreateOrder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req CreateOrderRequest
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
	var car models.Car
	if err := db.First(&car, req.CarID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	// Customers may only register orders for their own cars
	if user.Role != "mechanic" && (car.CustomerID == nil || *car.CustomerID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to create an order for this car",
			},
		})
		return
	}

	order := models.Order{
		Date:    time.Now(),
		Status:  models.StatusRegistered,
		DueBack: req.DueBack,
		CarID:   req.CarID,
	}

	if err := db.Create(&order).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if err := db.Preload("Car").Preload("Car.CarModel").First(&order, order.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	order.Decorate(time.Now())

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id (mechanics only) - changes
// status and/or due-back date. The creation date and sum are never writable
// here; the sum belongs to the ledger.
func UpdateOrder(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
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

	if req.Status != nil && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown order status",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DueBack != nil {
		updates["due_back"] = *req.DueBack
	}

	if len(updates) > 0 {
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			respondServiceError(c, err)
			return
		}
	}

	if err := db.Preload("Car").Preload("Car.CarModel").First(&order, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	order.Decorate(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id (mechanics only). Deletion
// cascades to the order's entries and comments.
func DeleteOrder(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteOrder(c.Request.Context(), config.GetDB(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}
