package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStageInUse is returned when a stage still has deals placed in it
var ErrStageInUse = errors.New("stage is referenced by deals")

type StageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

// List returns the tenant's stages ordered by position, ties broken by creation time
func (r *StageRepository) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Stage, error) {
	var stages []domain.Stage
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Order("position ASC, created_at ASC").
		Find(&stages).Error
	return stages, err
}

func (r *StageRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Stage, error) {
	var stage domain.Stage
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		First(&stage, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *StageRepository) Create(ctx context.Context, stage *domain.Stage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *StageRepository) Update(ctx context.Context, stage *domain.Stage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// GetMaxPosition returns the highest position of the tenant's stages, or -1 when there are none
func (r *StageRepository) GetMaxPosition(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var maxPosition int
	err := r.db.WithContext(ctx).
		Model(&domain.Stage{}).
		Scopes(ScopeTenant(tenantID)).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition).Error
	if err != nil {
		return 0, err
	}
	return maxPosition, nil
}

// Reorder assigns position = index to every id in one transaction.
// An id that is not a stage of the tenant aborts the whole reorder.
func (r *StageRepository) Reorder(ctx context.Context, tenantID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&domain.Stage{}).
				Scopes(ScopeTenant(tenantID)).
				Where("id = ?", id).
				Updates(map[string]interface{}{"position": i, "updated_at": tx.NowFunc()})
			if result.Error != nil {
				return fmt.Errorf("failed to update stage %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stage %s: %w", id, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// Delete removes a stage unless a deal references it. The check and the delete share a transaction.
func (r *StageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&domain.Deal{}).
			Scopes(ScopeTenant(tenantID)).
			Where("stage_id = ?", id).
			Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrStageInUse
		}

		result := tx.Scopes(ScopeTenant(tenantID)).Delete(&domain.Stage{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
