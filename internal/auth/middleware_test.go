package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-signing-secret"
	testIssuer = "gestor-test"
	testAPIKey = "test-api-key-12345"
)

func createTestMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    testIssuer,
		APIKey:    testAPIKey,
	}, zap.NewNop())
}

func captureHandler(captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate_WithAPIKey(t *testing.T) {
	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	tenantID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/board", nil)
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set(auth.TenantHeader, tenantID.String())
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, tenantID, captured.TenantID)
	assert.True(t, captured.HasRole(auth.RoleAPIService))
	assert.True(t, captured.HasPermission(auth.PermissionStagesDelete))
}

func TestMiddleware_Authenticate_APIKeyWithoutTenant(t *testing.T) {
	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/board", nil)
	req.Header.Set("x-api-key", testAPIKey)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, captured)
}

func TestMiddleware_Authenticate_InvalidAPIKey(t *testing.T) {
	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("x-api-key", "wrong")
	req.Header.Set(auth.TenantHeader, uuid.NewString())
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
	assert.Nil(t, captured)
}

func TestMiddleware_Authenticate_WithBearerToken(t *testing.T) {
	validator := auth.NewJWTValidator(testSecret, testIssuer)
	user := &auth.UserContext{
		UserID:      uuid.New(),
		TenantID:    uuid.New(),
		DisplayName: "Ana Souza",
		Email:       "ana@example.com",
		Roles:       []auth.Role{auth.RoleSales},
	}
	token, err := validator.IssueToken(user, time.Hour)
	require.NoError(t, err)

	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, user.UserID, captured.UserID)
	assert.Equal(t, user.TenantID, captured.TenantID)
	assert.Equal(t, "Ana Souza", captured.DisplayName)
	assert.Equal(t, []auth.Role{auth.RoleSales}, captured.Roles)
}

func TestMiddleware_Authenticate_MissingHeader(t *testing.T) {
	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Authenticate_BadScheme(t *testing.T) {
	var captured *auth.UserContext
	h := createTestMiddleware().Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_RequirePermission(t *testing.T) {
	mw := createTestMiddleware()
	h := mw.RequirePermission(auth.PermissionStagesDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		roles  []auth.Role
		status int
	}{
		{"admin", []auth.Role{auth.RoleAdmin}, http.StatusNoContent},
		{"manager", []auth.Role{auth.RoleManager}, http.StatusNoContent},
		{"sales", []auth.Role{auth.RoleSales}, http.StatusForbidden},
		{"viewer", []auth.Role{auth.RoleViewer}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &auth.UserContext{UserID: uuid.New(), TenantID: uuid.New(), Roles: tt.roles}
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/stages/x", nil)
			req = req.WithContext(auth.WithUserContext(req.Context(), user))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMiddleware_RequirePermission_NoUser(t *testing.T) {
	h := createTestMiddleware().RequirePermission(auth.PermissionDealsDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/deals/x", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	validator := auth.NewJWTValidator(testSecret, testIssuer)

	sign := func(secret string, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := func() *auth.Claims {
		return &auth.Claims{
			TenantID: uuid.NewString(),
			Roles:    []string{"manager", "unknown"},
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.NewString(),
				Issuer:    testIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	t.Run("valid token drops unknown roles", func(t *testing.T) {
		user, err := validator.ValidateToken(sign(testSecret, base()))
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleManager}, user.Roles)
	})

	t.Run("no known roles means viewer", func(t *testing.T) {
		c := base()
		c.Roles = []string{"api_service"}
		user, err := validator.ValidateToken(sign(testSecret, c))
		require.NoError(t, err)
		assert.Equal(t, []auth.Role{auth.RoleViewer}, user.Roles)
	})

	t.Run("expired", func(t *testing.T) {
		c := base()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := validator.ValidateToken(sign(testSecret, c))
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := validator.ValidateToken(sign("other", base()))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := base()
		c.Issuer = "someone-else"
		_, err := validator.ValidateToken(sign(testSecret, c))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing tenant", func(t *testing.T) {
		c := base()
		c.TenantID = ""
		_, err := validator.ValidateToken(sign(testSecret, c))
		assert.ErrorIs(t, err, auth.ErrMissingTenant)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		s, err := jwt.NewWithClaims(jwt.SigningMethodNone, base()).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = validator.ValidateToken(s)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
