package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the PostgreSQL connection pool and verifies it with a ping
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnectionString()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Models lists every table the service owns, in dependency order
func Models() []interface{} {
	return []interface{}{
		&domain.Contact{},
		&domain.Stage{},
		&domain.Deal{},
		&domain.DealStageHistory{},
		&domain.Quote{},
		&domain.Transaction{},
	}
}

// AutoMigrate creates the schema from the models (development and tests only; production uses goose)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// HealthStats is the connection pool state reported by the health endpoint
type HealthStats struct {
	OpenConnections int           `json:"openConnections"`
	InUse           int           `json:"inUse"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"waitCount"`
	WaitDuration    time.Duration `json:"waitDuration"`
	PingLatency     time.Duration `json:"pingLatency"`
}

// HealthCheck pings the database within ctx and returns the pool statistics
func HealthCheck(ctx context.Context, db *gorm.DB) (*HealthStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	stats := sqlDB.Stats()
	return &HealthStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration,
		PingLatency:     time.Since(start),
	}, nil
}

// Close closes the underlying pool, logging instead of failing
func Close(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database instance", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
}
