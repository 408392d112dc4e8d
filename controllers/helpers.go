package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/middleware"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// currentUser resolves the authenticated caller to a local user record. It
// writes the error response itself and returns nil when the caller cannot be
// resolved.
func currentUser(c *gin.Context) *models.User {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil
	}
	return &user
}

// requireMechanic resolves the caller and rejects non-mechanics. Catalog and
// order mutations are staff operations.
func requireMechanic(c *gin.Context) *models.User {
	user := currentUser(c)
	if user == nil {
		return nil
	}
	if user.Role != "mechanic" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only mechanics can perform this operation",
			},
		})
		return nil
	}
	return user
}

// parseID parses a numeric URL parameter, writing a 400 response on failure
func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid " + param + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// pagination reads page/per_page query parameters with sane bounds
func pagination(c *gin.Context) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, (page - 1) * perPage
}

// respondServiceError maps ledger/store error kinds to the API envelope
func respondServiceError(c *gin.Context, err error) {
	var nf *services.NotFoundError
	var ve *services.ValidationError
	var ce *services.ConcurrencyError
	var se *services.StoreUnavailableError

	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": nf.Error(),
			},
		})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": ve.Error(),
			},
		})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFLICT",
				"message": "The operation conflicted with a concurrent change, please retry",
			},
		})
	case errors.As(err, &se):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORE_UNAVAILABLE",
				"message": "The data store is currently unavailable",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Unexpected storage error",
			},
		})
	}
}
