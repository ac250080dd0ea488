package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when a transaction id does not name one of the tenant's
var ErrTransactionNotFound = fmt.Errorf("transaction not found: %w", ErrNotFound)

// TransactionService manages receivables and payables
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	pipeline        *PipelineService
	logger          *zap.Logger
}

func NewTransactionService(transactionRepo *repository.TransactionRepository, pipeline *PipelineService, logger *zap.Logger) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo, pipeline: pipeline, logger: logger}
}

// Create stores a transaction, pending unless a status is given. A referenced deal must
// belong to the tenant and lends its contact when the request names none.
func (s *TransactionService) Create(ctx context.Context, tenantID uuid.UUID, req *domain.CreateTransactionRequest) (*domain.TransactionDTO, error) {
	if req.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}

	status := req.Status
	if status == "" {
		status = domain.TransactionStatusPending
	}

	t := &domain.Transaction{
		TenantID:    tenantID,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
		Description: req.Description,
		Type:        req.Type,
		Status:      status,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	}

	if req.DealID != nil {
		deal, err := s.pipeline.GetDeal(ctx, tenantID, *req.DealID)
		if err != nil {
			return nil, err
		}
		if t.ContactID == nil {
			t.ContactID = deal.ContactID
		}
	}

	if err := s.transactionRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	dto := mapper.ToTransactionDTO(t)
	return &dto, nil
}

// MarkReceived settles an income transaction, optionally recording the amount actually paid
func (s *TransactionService) MarkReceived(ctx context.Context, tenantID, id uuid.UUID, paidAmount *float64) (*domain.TransactionDTO, error) {
	t, err := s.transactionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if t.Type != domain.TransactionTypeIncome {
		return nil, validationError("only income can be marked as received")
	}
	if t.Status == domain.TransactionStatusCancelled {
		return nil, validationError("cancelled transactions cannot be received")
	}
	if paidAmount != nil && *paidAmount < 0 {
		return nil, validationError("paid amount must not be negative")
	}

	t.Status = domain.TransactionStatusReceived
	t.PaidAmount = paidAmount

	if err := s.transactionRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.logger.Info("transaction received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transaction_id", id.String()))

	dto := mapper.ToTransactionDTO(t)
	return &dto, nil
}

func (s *TransactionService) ListByContact(ctx context.Context, tenantID, contactID uuid.UUID) ([]domain.TransactionDTO, error) {
	transactions, err := s.transactionRepo.ListByContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	dtos := make([]domain.TransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = mapper.ToTransactionDTO(&transactions[i])
	}
	return dtos, nil
}
