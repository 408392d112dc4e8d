package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCustomClaimsHasScope(t *testing.T) {
	tests := []struct {
		name          string
		scope         string
		expectedScope string
		want          bool
	}{
		{
			name:          "has exact scope",
			scope:         "read:orders",
			expectedScope: "read:orders",
			want:          true,
		},
		{
			name:          "has scope in multiple scopes",
			scope:         "read:orders write:orders delete:orders",
			expectedScope: "write:orders",
			want:          true,
		},
		{
			name:          "does not have scope",
			scope:         "read:orders",
			expectedScope: "write:orders",
			want:          false,
		},
		{
			name:          "empty scope",
			scope:         "",
			expectedScope: "read:orders",
			want:          false,
		},
		{
			name:          "partial match should not work",
			scope:         "read:orders",
			expectedScope: "read",
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := CustomClaims{Scope: tt.scope}
			assert.Equal(t, tt.want, claims.HasScope(tt.expectedScope))
		})
	}
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext()
	c.Set("user_id", "auth0|abc123")

	userID, err := GetUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, "auth0|abc123", userID)
}

func TestGetUserIDMissing(t *testing.T) {
	c, _ := newTestContext()

	_, err := GetUserID(c)
	assert.Error(t, err)

	authErr, ok := err.(*AuthError)
	assert.True(t, ok)
	assert.Equal(t, "MISSING_USER_ID", authErr.Code)
}

func TestGetUserIDWrongType(t *testing.T) {
	c, _ := newTestContext()
	c.Set("user_id", 42)

	_, err := GetUserID(c)
	assert.Error(t, err)

	authErr, ok := err.(*AuthError)
	assert.True(t, ok)
	assert.Equal(t, "INVALID_USER_ID", authErr.Code)
}

func TestGetAccessToken(t *testing.T) {
	tests := []struct {
		name         string
		contextToken string
		authHeader   string
		wantToken    string
		wantErrCode  string
	}{
		{
			name:         "prefers token stashed in context",
			contextToken: "stashed-token",
			authHeader:   "Bearer header-token",
			wantToken:    "stashed-token",
		},
		{
			name:       "falls back to Authorization header",
			authHeader: "Bearer header-token",
			wantToken:  "header-token",
		},
		{
			name:       "bearer scheme is case insensitive",
			authHeader: "bearer header-token",
			wantToken:  "header-token",
		},
		{
			name:        "missing header",
			wantErrCode: "MISSING_TOKEN",
		},
		{
			name:        "non-bearer header",
			authHeader:  "Basic dXNlcjpwYXNz",
			wantErrCode: "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			if tt.contextToken != "" {
				c.Set("access_token", tt.contextToken)
			}
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}

			token, err := GetAccessToken(c)
			if tt.wantErrCode != "" {
				assert.Error(t, err)
				authErr, ok := err.(*AuthError)
				assert.True(t, ok)
				assert.Equal(t, tt.wantErrCode, authErr.Code)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestGetClaims(t *testing.T) {
	c, _ := newTestContext()
	claims := &validator.ValidatedClaims{
		CustomClaims: &CustomClaims{Role: "mechanic"},
	}
	c.Set("validated_claims", claims)

	got, err := GetClaims(c)
	assert.NoError(t, err)
	assert.Equal(t, "mechanic", got.CustomClaims.(*CustomClaims).Role)
}

func TestGetClaimsMissing(t *testing.T) {
	c, _ := newTestContext()

	_, err := GetClaims(c)
	assert.Error(t, err)

	authErr, ok := err.(*AuthError)
	assert.True(t, ok)
	assert.Equal(t, "MISSING_CLAIMS", authErr.Code)
}

func TestRequireScope(t *testing.T) {
	tests := []struct {
		name           string
		scope          string
		requiredScope  string
		expectedStatus int
	}{
		{
			name:           "allows matching scope",
			scope:          "read:orders write:orders",
			requiredScope:  "write:orders",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejects missing scope",
			scope:          "read:orders",
			requiredScope:  "write:orders",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/protected", func(c *gin.Context) {
				c.Set("validated_claims", &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{Scope: tt.scope},
				})
			}, RequireScope(tt.requiredScope), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireScopeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireScope("read:orders"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
