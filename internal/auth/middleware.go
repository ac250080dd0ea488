package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantHeader selects the tenant for API key requests
const TenantHeader = "X-Tenant-ID"

// systemUserID identifies the API key service user
var systemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg.JWTSecret, cfg.Issuer),
		apiKey:       cfg.APIKey,
		logger:       logger,
	}
}

// Authenticate accepts either an x-api-key header paired with X-Tenant-ID,
// or a Bearer session token carrying the tenant in its claims.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "invalid API key")
				return
			}

			tenantID, err := uuid.Parse(r.Header.Get(TenantHeader))
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "API key requests must set "+TenantHeader)
				return
			}

			userCtx := &UserContext{
				UserID:      systemUserID,
				TenantID:    tenantID,
				DisplayName: "System",
				Roles:       []Role{RoleAPIService},
			}
			m.logger.Debug("request authenticated",
				zap.String("path", r.URL.Path),
				zap.String("auth_type", "api_key"),
				zap.String("tenant_id", tenantID.String()),
				zap.Duration("auth_duration", time.Since(start)),
			)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "invalid authorization header format")
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("tenant_id", userCtx.TenantID.String()),
			zap.Strings("roles", userCtx.RolesAsStrings()),
			zap.Duration("auth_duration", time.Since(start)),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequirePermission middleware ensures user has specific permission
func (m *Middleware) RequirePermission(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, domain.ErrorTypeForbidden, "no user context")
				return
			}
			if !userCtx.HasPermission(permission) {
				m.logger.Info("permission denied",
					zap.String("user_id", userCtx.UserID.String()),
					zap.String("permission", string(permission)),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, domain.ErrorTypeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func writeError(w http.ResponseWriter, status int, errType, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
