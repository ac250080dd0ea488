package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	h := rl.LimitByIP(okHandler())

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, serve(h, "/api/v1/deals", "10.0.0.1:1234").Code)
	}
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"127.0.0.1"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	}, zap.NewNop())
	h := rl.LimitByIP(okHandler())

	t.Run("limit applies per ip", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(h, "/api/v1/deals", "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, serve(h, "/api/v1/deals", "10.0.0.1:1234").Code)

		rr := serve(h, "/api/v1/deals", "10.0.0.1:1234")
		require.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "60", rr.Header().Get("Retry-After"))

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, "rate_limited", apiErr.Type)

		assert.Equal(t, http.StatusOK, serve(h, "/api/v1/deals", "10.0.0.2:1234").Code)
	})

	t.Run("whitelisted ip", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h, "/api/v1/deals", "127.0.0.1:5555").Code)
		}
	})

	t.Run("whitelisted paths", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, serve(h, "/health", "10.0.0.3:1234").Code)
			assert.Equal(t, http.StatusOK, serve(h, "/swagger/index.html", "10.0.0.3:1234").Code)
		}
	})

	t.Run("forwarded for header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
		req.RemoteAddr = "10.0.0.9:1"
		req.Header.Set("X-Forwarded-For", "127.0.0.1, 10.0.0.9")
		for i := 0; i < 5; i++ {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	})
}

func TestRateLimiter_LimitByUser(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	h := rl.LimitByUser(okHandler())
	tenant := uuid.New()

	request := func(user *auth.UserContext) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(auth.WithUserContext(context.Background(), user))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	alice := &auth.UserContext{UserID: uuid.New(), TenantID: tenant}
	bob := &auth.UserContext{UserID: uuid.New(), TenantID: tenant}

	assert.Equal(t, http.StatusOK, request(alice))
	assert.Equal(t, http.StatusTooManyRequests, request(alice))
	assert.Equal(t, http.StatusOK, request(bob), "users behind the same ip have separate budgets")
}
