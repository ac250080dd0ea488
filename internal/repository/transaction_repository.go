package repository

import (
	"context"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(tx).Error
}

// ListByContact returns the tenant's transactions with a contact
func (r *TransactionRepository) ListByContact(ctx context.Context, tenantID, contactID uuid.UUID) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.WithContext(ctx).
		Scopes(ScopeTenant(tenantID)).
		Where("contact_id = ?", contactID).
		Find(&txs).Error
	return txs, err
}
