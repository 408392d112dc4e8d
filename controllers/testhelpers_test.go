package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/middleware"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setupTestDB opens an in-memory database, migrates every model and installs
// it plus a fresh ledger as the shared instances the controllers use
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.CarModel{},
		&models.Car{},
		&models.Service{},
		&models.Order{},
		&models.OrderEntry{},
		&models.OrderComment{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	services.InitLedger(db)

	return db
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		customClaims := &middleware.CustomClaims{
			Role: role,
		}
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func createTestUser(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test " + role,
		Email:   auth0ID + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestCarModel(t *testing.T, db *gorm.DB) *models.CarModel {
	t.Helper()

	carModel := models.CarModel{Make: "Volvo", Model: "V60", Year: 2020}
	require.NoError(t, db.Create(&carModel).Error)
	return &carModel
}

func createTestCar(t *testing.T, db *gorm.DB, carModelID uint, customerID *uint) *models.Car {
	t.Helper()

	car := models.Car{
		PlateNumber: "KLM456",
		VIN:         "YV1FW54C4D2987654",
		CarModelID:  carModelID,
		CustomerID:  customerID,
	}
	require.NoError(t, db.Create(&car).Error)
	return &car
}

func createTestService(t *testing.T, db *gorm.DB, name, price string) *models.Service {
	t.Helper()

	service := models.Service{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(&service).Error)
	return &service
}

func createTestOrder(t *testing.T, db *gorm.DB, carID uint) *models.Order {
	t.Helper()

	order := models.Order{Date: time.Now(), Status: models.StatusRegistered, CarID: carID}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

// doJSON performs a JSON request against the router and parses the envelope
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response body: %s", w.Body.String())
	}
	return w, response
}

// performRequest runs a raw request through the router
func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// currentOrderSum reads the persisted order sum back out of the store
func currentOrderSum(t *testing.T, db *gorm.DB, orderID uint) decimal.Decimal {
	t.Helper()

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	return order.OrderSum
}

// errorCode extracts error.code from a response envelope
func errorCode(response map[string]interface{}) string {
	errData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errData["code"].(string)
	return code
}
