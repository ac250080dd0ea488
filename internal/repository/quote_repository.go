package repository

import (
	"context"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(quote).Error
}

// ListByContact returns the tenant's quotes addressed to a contact
func (r *QuoteRepository) ListByContact(ctx context.Context, tenantID, contactID uuid.UUID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Where("contact_id = ?", contactID).
		Find(&quotes).Error
	return quotes, err
}

// ListByDeal returns quotes raised from a deal
func (r *QuoteRepository) ListByDeal(ctx context.Context, tenantID, dealID uuid.UUID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Where("deal_id = ?", dealID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}
