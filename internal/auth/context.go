package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// Role is a user's role within a tenant
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSales      Role = "sales"
	RoleViewer     Role = "viewer"
	RoleAPIService Role = "api_service"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSales, RoleViewer, RoleAPIService:
		return true
	}
	return false
}

// Permission names an action guarded on the server
type Permission string

const (
	PermissionContactsWrite  Permission = "contacts:write"
	PermissionContactsDelete Permission = "contacts:delete"
	PermissionDealsWrite     Permission = "deals:write"
	PermissionDealsDelete    Permission = "deals:delete"
	PermissionStagesManage   Permission = "stages:manage"
	PermissionStagesDelete   Permission = "stages:delete"
	PermissionFinanceWrite   Permission = "finance:write"
)

var rolePermissions = map[Role][]Permission{
	RoleManager: {
		PermissionContactsWrite, PermissionContactsDelete,
		PermissionDealsWrite, PermissionDealsDelete,
		PermissionStagesManage, PermissionStagesDelete,
		PermissionFinanceWrite,
	},
	RoleSales: {
		PermissionContactsWrite,
		PermissionDealsWrite,
		PermissionFinanceWrite,
	},
	RoleViewer: {},
}

// UserContext is the authenticated caller attached to a request
type UserContext struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	DisplayName string
	Email       string
	Roles       []Role
}

// WithUserContext adds user context to the request context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the request context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin is true for tenant admins and the API key service user
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(RoleAdmin, RoleAPIService)
}

// HasPermission checks the user's roles against the permission table.
// Admins hold every permission.
func (u *UserContext) HasPermission(permission Permission) bool {
	if u.IsAdmin() {
		return true
	}
	for _, role := range u.Roles {
		for _, p := range rolePermissions[role] {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
