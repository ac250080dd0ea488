package service

import (
	"context"
	"fmt"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService creates quotes, typically as the follow-up of a deal entering a proposal stage
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	pipeline  *PipelineService
	logger    *zap.Logger
}

func NewQuoteService(quoteRepo *repository.QuoteRepository, pipeline *PipelineService, logger *zap.Logger) *QuoteService {
	return &QuoteService{quoteRepo: quoteRepo, pipeline: pipeline, logger: logger}
}

// Create stores a quote. When it references a deal, the deal must belong to the tenant
// and its contact is used unless the request names one.
func (s *QuoteService) Create(ctx context.Context, tenantID uuid.UUID, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	status := req.Status
	if status == "" {
		status = domain.QuoteStatusDraft
	}

	quote := &domain.Quote{
		TenantID:    tenantID,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
		Number:      req.Number,
		Title:       req.Title,
		TotalAmount: req.TotalAmount,
		Status:      status,
		IssueDate:   req.IssueDate,
	}

	if req.DealID != nil {
		deal, err := s.pipeline.GetDeal(ctx, tenantID, *req.DealID)
		if err != nil {
			return nil, err
		}
		if quote.ContactID == nil {
			quote.ContactID = deal.ContactID
		}
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quote_id", quote.ID.String()))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ListByDeal returns quotes raised from a deal of the tenant
func (s *QuoteService) ListByDeal(ctx context.Context, tenantID, dealID uuid.UUID) ([]domain.QuoteDTO, error) {
	if _, err := s.pipeline.GetDeal(ctx, tenantID, dealID); err != nil {
		return nil, err
	}
	quotes, err := s.quoteRepo.ListByDeal(ctx, tenantID, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}
	return dtos, nil
}

// ListByContact returns the tenant's quotes addressed to a contact
func (s *QuoteService) ListByContact(ctx context.Context, tenantID, contactID uuid.UUID) ([]domain.QuoteDTO, error) {
	quotes, err := s.quoteRepo.ListByContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}
	return dtos, nil
}
