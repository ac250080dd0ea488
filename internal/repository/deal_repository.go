package repository

import (
	"context"
	"time"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageMove describes a deal being placed into another stage
type StageMove struct {
	TenantID      uuid.UUID
	DealID        uuid.UUID
	ToStageID     uuid.UUID
	ChangedByID   string
	ChangedByName string
}

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	// Omit associations so gorm does not upsert the referenced contact or stage
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// List returns every deal of the tenant in store order
func (r *DealRepository) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Find(&deals).Error
	return deals, err
}

// ListByContact returns the tenant's deals linked to a contact
func (r *DealRepository) ListByContact(ctx context.Context, tenantID, contactID uuid.UUID) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Where("contact_id = ?", contactID).
		Find(&deals).Error
	return deals, err
}

// Delete removes a deal together with its stage history
func (r *DealRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ?", id).Delete(&domain.DealStageHistory{}).Error; err != nil {
			return err
		}
		result := tx.Scopes(ScopeTenant(tenantID)).Delete(&domain.Deal{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// StageMoveResult reports where a deal came from and whether its stage changed
type StageMoveResult struct {
	FromStageID *uuid.UUID
	Moved       bool
}

// MoveToStage sets the deal's stage, refreshes updated_at and records the transition, atomically.
// A deal already in the target stage is left untouched and no history is written.
func (r *DealRepository) MoveToStage(ctx context.Context, move StageMove) (*StageMoveResult, error) {
	var result *StageMoveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = moveDeal(tx, move)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateWithMove saves the deal's fields and, when move is set, its stage change in one transaction
func (r *DealRepository) UpdateWithMove(ctx context.Context, deal *domain.Deal, move *StageMove) (*StageMoveResult, error) {
	var result *StageMoveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(deal).Error; err != nil {
			return err
		}
		if move == nil {
			return nil
		}
		var err error
		result, err = moveDeal(tx, *move)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func moveDeal(tx *gorm.DB, move StageMove) (*StageMoveResult, error) {
	var deal domain.Deal
	if err := tx.Scopes(ScopeTenant(move.TenantID)).
		Select("id", "stage_id").
		First(&deal, "id = ?", move.DealID).Error; err != nil {
		return nil, err
	}

	result := &StageMoveResult{FromStageID: deal.StageID}
	if deal.StageID != nil && *deal.StageID == move.ToStageID {
		return result, nil
	}

	now := time.Now().UTC()
	if err := tx.Model(&domain.Deal{}).
		Scopes(ScopeTenant(move.TenantID)).
		Where("id = ?", move.DealID).
		Updates(map[string]interface{}{
			"stage_id":   move.ToStageID,
			"updated_at": now,
		}).Error; err != nil {
		return nil, err
	}

	toStage := move.ToStageID
	if err := tx.Create(&domain.DealStageHistory{
		TenantID:      move.TenantID,
		DealID:        move.DealID,
		FromStageID:   deal.StageID,
		ToStageID:     &toStage,
		ChangedByID:   move.ChangedByID,
		ChangedByName: move.ChangedByName,
		ChangedAt:     now,
	}).Error; err != nil {
		return nil, err
	}

	result.Moved = true
	return result, nil
}

// StageTotals is the number and summed value of deals in one stage of one tenant
type StageTotals struct {
	TenantID   uuid.UUID
	StageID    *uuid.UUID
	Count      int64
	TotalValue float64
}

// GetStageTotals aggregates active deals per tenant and stage
func (r *DealRepository) GetStageTotals(ctx context.Context) ([]StageTotals, error) {
	var results []StageTotals
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("tenant_id, stage_id, COUNT(*) as count, COALESCE(SUM(value), 0) as total_value").
		Where("status = ?", domain.DealStatusActive).
		Group("tenant_id, stage_id").
		Scan(&results).Error
	return results, err
}
