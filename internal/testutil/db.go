// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/gestorpro/gestor-api/internal/database"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The pool is capped at one connection because every new :memory: connection is a new database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")
	return db
}

// CreateTestContact creates a client contact owned by userID in tenantID
func CreateTestContact(t *testing.T, db *gorm.DB, tenantID, userID uuid.UUID, name string) *domain.Contact {
	t.Helper()
	contact := &domain.Contact{
		TenantID: tenantID,
		UserID:   userID,
		Name:     name,
		Category: domain.ContactCategoryClient,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// CreateTestStage creates a stage at the given position
func CreateTestStage(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, position int) *domain.Stage {
	t.Helper()
	stage := &domain.Stage{
		TenantID: tenantID,
		Name:     name,
		Color:    domain.DefaultStageColor,
		Position: position,
	}
	require.NoError(t, db.Create(stage).Error)
	return stage
}

// CreateTestDeal creates an active deal, optionally placed in a stage and linked to a contact
func CreateTestDeal(t *testing.T, db *gorm.DB, tenantID uuid.UUID, stageID, contactID *uuid.UUID, title string, value float64) *domain.Deal {
	t.Helper()
	deal := &domain.Deal{
		TenantID:  tenantID,
		StageID:   stageID,
		ContactID: contactID,
		Title:     title,
		Value:     value,
		Status:    domain.DealStatusActive,
		Tags:      []string{},
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

// CreateTestQuote creates a quote for a contact
func CreateTestQuote(t *testing.T, db *gorm.DB, tenantID, contactID uuid.UUID, title string, total float64, issued *time.Time) *domain.Quote {
	t.Helper()
	quote := &domain.Quote{
		TenantID:    tenantID,
		ContactID:   &contactID,
		Title:       title,
		TotalAmount: total,
		Status:      domain.QuoteStatusSent,
		IssueDate:   issued,
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

// CreateTestTransaction creates a transaction for a contact
func CreateTestTransaction(t *testing.T, db *gorm.DB, tenantID, contactID uuid.UUID, tx domain.Transaction) *domain.Transaction {
	t.Helper()
	tx.TenantID = tenantID
	tx.ContactID = &contactID
	if tx.Description == "" {
		tx.Description = "test transaction"
	}
	require.NoError(t, db.Create(&tx).Error)
	return &tx
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
