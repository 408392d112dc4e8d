package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/autolane/car-service-api/services"
)

// EntryRequest represents the request body for adding or updating a billable
// entry. Quantity defaults to 1 when omitted; a zero or omitted price is
// captured from the service catalog at that moment.
type EntryRequest struct {
	ServiceID uint            `json:"service_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ListOrderEntries handles GET /api/v1/orders/:id/entries - entries ordered
// by service name
func ListOrderEntries(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := services.GetLedger().ListEntries(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// AddOrderEntry handles POST /api/v1/orders/:id/entries (mechanics only) -
// bills a service on an order and re-derives the order sum atomically
func AddOrderEntry(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EntryRequest
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

	if req.ServiceID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "service_id is required",
			},
		})
		return
	}

	quantity := req.Quantity
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}

	entry, err := services.GetLedger().AddEntry(c.Request.Context(), orderID, req.ServiceID, quantity, req.Price)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    entry,
	})
}

// UpdateOrderEntry handles PUT /api/v1/entries/:id (mechanics only)
func UpdateOrderEntry(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	entryID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EntryRequest
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

	entry, err := services.GetLedger().UpdateEntry(c.Request.Context(), entryID, req.ServiceID, req.Quantity, req.Price)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// RemoveOrderEntry handles DELETE /api/v1/entries/:id (mechanics only) -
// removes the entry and re-derives the order sum atomically
func RemoveOrderEntry(c *gin.Context) {
	if requireMechanic(c) == nil {
		return
	}

	entryID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := services.GetLedger().RemoveEntry(c.Request.Context(), entryID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Entry removed",
	})
}
