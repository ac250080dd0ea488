package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Owner identifies the user and tenant a contact operation acts for
type Owner struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

type ContactService struct {
	contactRepo *repository.ContactRepository
	logger      *zap.Logger
}

func NewContactService(contactRepo *repository.ContactRepository, logger *zap.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

func (s *ContactService) Create(ctx context.Context, owner Owner, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	contact := &domain.Contact{
		UserID:   owner.UserID,
		TenantID: owner.TenantID,
	}
	if err := applyContactRequest(contact, req); err != nil {
		return nil, err
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("contact created",
		zap.String("contact_id", contact.ID.String()),
		zap.String("user_id", owner.UserID.String()))

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, owner Owner, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, owner.UserID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// List returns the user's contacts ordered by name unless sort says otherwise
func (s *ContactService) List(ctx context.Context, owner Owner, filter repository.ContactFilter, sort repository.SortConfig) ([]domain.ContactDTO, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, validationError("unknown contact category %q", filter.Category)
	}

	contacts, err := s.contactRepo.List(ctx, owner.UserID, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}
	return dtos, nil
}

func (s *ContactService) Update(ctx context.Context, owner Owner, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, owner.UserID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if err := applyContactRequest(contact, req); err != nil {
		return nil, err
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) Delete(ctx context.Context, owner Owner, id uuid.UUID) error {
	if err := s.contactRepo.Delete(ctx, owner.UserID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.logger.Info("contact deleted",
		zap.String("contact_id", id.String()),
		zap.String("user_id", owner.UserID.String()))
	return nil
}

// applyContactRequest copies the request onto the contact, normalising the phone
// number and defaulting the category to client.
func applyContactRequest(contact *domain.Contact, req *domain.CreateContactRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return validationError("name is required")
	}

	category := req.Category
	if category == "" {
		category = domain.ContactCategoryClient
	}
	if !category.IsValid() {
		return validationError("unknown contact category %q", category)
	}

	contact.Name = name
	contact.Category = category
	contact.Email = strings.TrimSpace(req.Email)
	contact.Phone = domain.NormalizePhone(req.Phone)
	contact.TaxID = domain.OnlyDigits(req.TaxID)
	contact.ZipCode = domain.OnlyDigits(req.ZipCode)
	contact.Street = req.Street
	contact.Number = req.Number
	contact.Complement = req.Complement
	contact.Neighborhood = req.Neighborhood
	contact.City = req.City
	contact.State = strings.ToUpper(req.State)
	return nil
}
