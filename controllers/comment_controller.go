package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
)

// CreateCommentRequest represents the request body for commenting on an order
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment handles POST /api/v1/orders/:id/comments - appends a comment
// to an order. Comments are append-only; the commenter reference is the
// resolved caller, passed explicitly.
func CreateComment(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Car").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	// Customers can only comment on orders for their own cars
	if user.Role != "mechanic" && !ownsOrder(user, &order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to comment on this order",
			},
		})
		return
	}

	var req CreateCommentRequest
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

	if len(req.Content) > models.MaxCommentLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Comment is too long",
			},
		})
		return
	}

	comment := models.OrderComment{
		OrderID:     order.ID,
		CommenterID: &user.ID,
		Content:     req.Content,
	}

	if err := db.Create(&comment).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	// Load the commenter relationship to return complete data
	if err := db.Preload("Commenter").First(&comment, comment.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    comment,
	})
}

// ListComments handles GET /api/v1/orders/:id/comments - lists an order's
// comments, newest first
func ListComments(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var comments []models.OrderComment
	if err := db.Where("order_id = ?", order.ID).
		Preload("Commenter").
		Order("created_at DESC, id DESC").
		Find(&comments).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comments,
	})
}
