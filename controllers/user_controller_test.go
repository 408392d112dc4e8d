package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
)

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's
// /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := authHeader[7:] // strip "Bearer "

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

// useMockAuth0 points the Auth0 service at a local userinfo server for the
// duration of a test
func useMockAuth0(t *testing.T, userInfoMap map[string]*services.Auth0UserInfo) {
	t.Helper()

	mockServer := setupMockAuth0Server(userInfoMap)
	original := config.GetConfig()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	t.Cleanup(func() {
		config.SetConfig(original)
		mockServer.Close()
	})
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		auth0ID        string
		email          string
		userName       string
		role           string
		accessToken    string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Create customer user successfully",
			auth0ID:        "auth0|123456",
			email:          "john@example.com",
			userName:       "John Doe",
			role:           "customer",
			accessToken:    "token-123456",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Create mechanic user successfully",
			auth0ID:        "auth0|mech789",
			email:          "mechanic@example.com",
			userName:       "Shop Mechanic",
			role:           "mechanic",
			accessToken:    "token-mech789",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Default to customer role when claim is empty",
			auth0ID:        "auth0|norole",
			email:          "norole@example.com",
			userName:       "No Role User",
			role:           "",
			accessToken:    "token-norole",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Fail with missing email",
			auth0ID:        "auth0|noemail",
			email:          "",
			userName:       "No Email User",
			role:           "customer",
			accessToken:    "token-noemail",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_EMAIL",
		},
		{
			name:           "Fail with missing name",
			auth0ID:        "auth0|noname",
			email:          "noname@example.com",
			userName:       "",
			role:           "customer",
			accessToken:    "token-noname",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestDB(t)

			useMockAuth0(t, map[string]*services.Auth0UserInfo{
				tt.accessToken: {
					Sub:   tt.auth0ID,
					Email: tt.email,
					Name:  tt.userName,
				},
			})

			router := setupTestRouter()
			router.POST("/users", mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken), CreateUser)

			w, response := doJSON(t, router, http.MethodPost, "/users", nil)

			require.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusCreated {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.email, data["email"])
				assert.Equal(t, tt.userName, data["name"])
				assert.Equal(t, tt.auth0ID, data["auth0_id"])
				if tt.role != "" {
					assert.Equal(t, tt.role, data["role"])
				} else {
					assert.Equal(t, "customer", data["role"])
				}
			} else {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedCode, errorCode(response))
			}
		})
	}
}

func TestCreateUserDuplicateAuth0ID(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "auth0|duplicate", "customer")

	accessToken := "token-duplicate"
	useMockAuth0(t, map[string]*services.Auth0UserInfo{
		accessToken: {
			Sub:   "auth0|duplicate",
			Email: "second@example.com",
			Name:  "Second User",
		},
	})

	router := setupTestRouter()
	router.POST("/users", mockAuthMiddleware("auth0|duplicate", "customer", accessToken), CreateUser)

	w, response := doJSON(t, router, http.MethodPost, "/users", nil)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USER_EXISTS", errorCode(response))
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "auth0|profile1", "customer")

	router := setupTestRouter()
	router.GET("/users/me", mockAuthMiddleware(user.Auth0ID, "customer", "mock-token"), GetMyProfile)

	w, response := doJSON(t, router, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, user.Email, data["email"])
	assert.Equal(t, user.Auth0ID, data["auth0_id"])
}

func TestGetMyProfileWithoutProfile(t *testing.T) {
	setupTestDB(t)

	router := setupTestRouter()
	router.GET("/users/me", mockAuthMiddleware("auth0|nobody", "customer", "mock-token"), GetMyProfile)

	w, response := doJSON(t, router, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(response))
}

func TestUpdateMyProfile(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "auth0|profile2", "customer")

	router := setupTestRouter()
	router.PUT("/users/me", mockAuthMiddleware(user.Auth0ID, "customer", "mock-token"), UpdateMyProfile)

	w, response := doJSON(t, router, http.MethodPut, "/users/me", map[string]interface{}{
		"name": "Renamed Customer",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Renamed Customer", data["name"])
	assert.Equal(t, user.Email, data["email"])

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Renamed Customer", stored.Name)
}

func TestUpdateMyProfileDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "auth0|profile3", "customer")
	other := createTestUser(t, db, "auth0|profile4", "customer")

	router := setupTestRouter()
	router.PUT("/users/me", mockAuthMiddleware(user.Auth0ID, "customer", "mock-token"), UpdateMyProfile)

	w, response := doJSON(t, router, http.MethodPut, "/users/me", map[string]interface{}{
		"email": other.Email,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(response))
}
