package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // API field name
	Order SortOrder // asc or desc
}

// ParseSortOrder parses a string into SortOrder, defaulting to asc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "desc" {
		return SortOrderDesc
	}
	return SortOrderAsc
}

// BuildOrderClause builds the ORDER BY clause from a whitelist of API field names to columns.
// Unknown fields fall back to defaultColumn.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "ASC"
	if config.Order == SortOrderDesc {
		order = "DESC"
	}

	return column + " " + order
}

// ScopeTenant restricts a query to rows of one tenant.
// The tenant is always passed explicitly by the caller; repositories never read it from ambient state.
func ScopeTenant(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// ScopeOwner restricts a query to rows owned by one user
func ScopeOwner(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
