package repository

import (
	"context"
	"time"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealStageHistoryRepository struct {
	db *gorm.DB
}

func NewDealStageHistoryRepository(db *gorm.DB) *DealStageHistoryRepository {
	return &DealStageHistoryRepository{db: db}
}

// ListByDeal returns the stage history of a deal, most recent first
func (r *DealStageHistoryRepository) ListByDeal(ctx context.Context, tenantID, dealID uuid.UUID) ([]domain.DealStageHistory, error) {
	var history []domain.DealStageHistory
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Where("deal_id = ?", dealID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}

// CountMovesSince counts stage transitions per tenant since the given time
func (r *DealStageHistoryRepository) CountMovesSince(ctx context.Context, since time.Time) (map[uuid.UUID]int64, error) {
	type result struct {
		TenantID uuid.UUID
		Count    int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.DealStageHistory{}).
		Select("tenant_id, COUNT(*) as count").
		Where("changed_at >= ?", since).
		Group("tenant_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		counts[r.TenantID] = r.Count
	}
	return counts, nil
}
