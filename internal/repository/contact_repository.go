package repository

import (
	"context"
	"strings"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactFilter narrows a contact listing
type ContactFilter struct {
	Search   string
	Category domain.ContactCategory
}

var contactSortFields = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"city":      "city",
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// GetByID returns a contact owned by the given user
func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.WithContext(ctx).
		Scopes(ScopeOwner(ownerID)).
		First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns the user's contacts, ordered by name unless another sort is requested
func (r *ContactRepository) List(ctx context.Context, ownerID uuid.UUID, filter ContactFilter, sort SortConfig) ([]domain.Contact, error) {
	query := r.db.WithContext(ctx).Scopes(ScopeOwner(ownerID))

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR tax_id LIKE ?", pattern, pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var contacts []domain.Contact
	err := query.
		Order(BuildOrderClause(sort, contactSortFields, "name")).
		Find(&contacts).Error
	return contacts, err
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete removes a contact owned by the user; gorm.ErrRecordNotFound when nothing matched
func (r *ContactRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(ScopeOwner(ownerID)).
		Delete(&domain.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsInTenant reports whether a contact id belongs to the tenant
func (r *ContactRepository) ExistsInTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Scopes(ScopeTenant(tenantID)).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
