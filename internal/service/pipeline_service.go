package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestorpro/gestor-api/internal/cache"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/metrics"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the user on whose behalf a pipeline change is made
type Actor struct {
	ID   string
	Name string
}

// PipelineService manages stages and deals of a tenant's sales pipeline.
// Every mutation invalidates the tenant's cached board so the next Board call reflects it.
type PipelineService struct {
	stageRepo   *repository.StageRepository
	dealRepo    *repository.DealRepository
	historyRepo *repository.DealStageHistoryRepository
	contactRepo *repository.ContactRepository
	cache       *cache.Cache
	boardTTL    time.Duration
	logger      *zap.Logger
}

func NewPipelineService(
	stageRepo *repository.StageRepository,
	dealRepo *repository.DealRepository,
	historyRepo *repository.DealStageHistoryRepository,
	contactRepo *repository.ContactRepository,
	boardCache *cache.Cache,
	boardTTL time.Duration,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		stageRepo:   stageRepo,
		dealRepo:    dealRepo,
		historyRepo: historyRepo,
		contactRepo: contactRepo,
		cache:       boardCache,
		boardTTL:    boardTTL,
		logger:      logger,
	}
}

// ListStages returns the tenant's stages ordered by position ascending
func (s *PipelineService) ListStages(ctx context.Context, tenantID uuid.UUID) ([]domain.Stage, error) {
	stages, err := s.stageRepo.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return stages, nil
}

// ListDeals returns every deal of the tenant, in no particular order
func (s *PipelineService) ListDeals(ctx context.Context, tenantID uuid.UUID) ([]domain.Deal, error) {
	deals, err := s.dealRepo.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

// Board returns stages and deals together, served from cache when available
func (s *PipelineService) Board(ctx context.Context, tenantID uuid.UUID) (*domain.Board, error) {
	load := func(ctx context.Context) (interface{}, error) {
		return s.loadBoard(ctx, tenantID)
	}

	key, err := s.cache.BuildKey(ctx, boardScope(tenantID))
	if err != nil {
		s.logger.Warn("board cache unavailable, reading store directly",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return s.loadBoard(ctx, tenantID)
	}

	var board domain.Board
	if err := s.cache.FetchJSON(ctx, key, s.boardTTL, &board, load); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *PipelineService) loadBoard(ctx context.Context, tenantID uuid.UUID) (*domain.Board, error) {
	stages, err := s.ListStages(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	deals, err := s.ListDeals(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &domain.Board{Stages: stages, Deals: deals}, nil
}

// CreateStage appends a stage. Without an explicit position it goes after the last stage.
func (s *PipelineService) CreateStage(ctx context.Context, tenantID uuid.UUID, req *domain.CreateStageRequest) (*domain.Stage, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("stage name is required")
	}

	position := 0
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, validationError("position must not be negative")
		}
		position = *req.Position
	} else {
		maxPosition, err := s.stageRepo.GetMaxPosition(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get max stage position: %w", err)
		}
		position = maxPosition + 1
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = domain.DefaultStageColor
	}

	stage := &domain.Stage{
		TenantID: tenantID,
		Name:     name,
		Color:    color,
		Position: position,
	}
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	s.invalidateBoard(ctx, tenantID)
	s.logger.Info("stage created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("stage_id", stage.ID.String()),
		zap.Int("position", position))

	return stage, nil
}

// UpdateStage applies the non-nil fields of req
func (s *PipelineService) UpdateStage(ctx context.Context, tenantID, id uuid.UUID, req *domain.UpdateStageRequest) (*domain.Stage, error) {
	stage, err := s.getStage(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("stage name is required")
		}
		stage.Name = name
	}
	if req.Color != nil {
		stage.Color = strings.TrimSpace(*req.Color)
		if stage.Color == "" {
			stage.Color = domain.DefaultStageColor
		}
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, validationError("position must not be negative")
		}
		stage.Position = *req.Position
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	s.invalidateBoard(ctx, tenantID)
	return stage, nil
}

// DeleteStage removes a stage. It fails with ErrStageHasDeals while any deal references it.
func (s *PipelineService) DeleteStage(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.stageRepo.Delete(ctx, tenantID, id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStageInUse):
		return ErrStageHasDeals
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrStageNotFound
	default:
		return fmt.Errorf("failed to delete stage: %w", err)
	}

	s.invalidateBoard(ctx, tenantID)
	s.logger.Info("stage deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("stage_id", id.String()))
	return nil
}

// ReorderStages sets each stage's position to its index in orderedIDs, atomically
func (s *PipelineService) ReorderStages(ctx context.Context, tenantID uuid.UUID, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return validationError("stage order must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return validationError("stage %s appears more than once", id)
		}
		seen[id] = struct{}{}
	}

	if err := s.stageRepo.Reorder(ctx, tenantID, orderedIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to reorder stages: %w", err)
	}

	metrics.StageReordersTotal.Inc()
	s.invalidateBoard(ctx, tenantID)
	return nil
}

// GetDeal returns one deal of the tenant
func (s *PipelineService) GetDeal(ctx context.Context, tenantID, id uuid.UUID) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

func (s *PipelineService) CreateDeal(ctx context.Context, tenantID uuid.UUID, req *domain.CreateDealRequest) (*domain.Deal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("deal title is required")
	}
	if err := validateProbability(req.Probability); err != nil {
		return nil, err
	}
	if req.Value < 0 {
		return nil, validationError("value must not be negative")
	}

	status := req.Status
	if status == "" {
		status = domain.DealStatusActive
	}
	if !status.IsValid() {
		return nil, validationError("unknown deal status %q", status)
	}

	if req.StageID != nil {
		if err := s.ensureStageExists(ctx, tenantID, *req.StageID); err != nil {
			return nil, err
		}
	}
	if req.ContactID != nil {
		if err := s.ensureContactExists(ctx, tenantID, *req.ContactID); err != nil {
			return nil, err
		}
	}

	deal := &domain.Deal{
		TenantID:    tenantID,
		ContactID:   req.ContactID,
		StageID:     req.StageID,
		Title:       title,
		Description: req.Description,
		Value:       req.Value,
		Probability: req.Probability,
		Status:      status,
		Tags:        normalizeTags(req.Tags),
	}
	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.invalidateBoard(ctx, tenantID)
	s.logger.Info("deal created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("deal_id", deal.ID.String()))

	return deal, nil
}

// UpdateDeal applies the non-nil fields of req and refreshes updated_at.
// A stage change is recorded in the deal's stage history like a move.
func (s *PipelineService) UpdateDeal(ctx context.Context, tenantID, id uuid.UUID, req *domain.UpdateDealRequest, actor Actor) (*domain.Deal, error) {
	deal, err := s.GetDeal(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, validationError("deal title is required")
		}
		deal.Title = title
	}
	if req.Description != nil {
		deal.Description = *req.Description
	}
	if req.Value != nil {
		if *req.Value < 0 {
			return nil, validationError("value must not be negative")
		}
		deal.Value = *req.Value
	}
	if req.Probability != nil {
		if err := validateProbability(*req.Probability); err != nil {
			return nil, err
		}
		deal.Probability = *req.Probability
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, validationError("unknown deal status %q", *req.Status)
		}
		deal.Status = *req.Status
	}
	if req.Tags != nil {
		deal.Tags = normalizeTags(req.Tags)
	}
	if req.ContactID != nil {
		if err := s.ensureContactExists(ctx, tenantID, *req.ContactID); err != nil {
			return nil, err
		}
		deal.ContactID = req.ContactID
	}

	var move *repository.StageMove
	if req.StageID != nil && (deal.StageID == nil || *deal.StageID != *req.StageID) {
		if err := s.ensureStageExists(ctx, tenantID, *req.StageID); err != nil {
			return nil, err
		}
		move = &repository.StageMove{
			TenantID:      tenantID,
			DealID:        deal.ID,
			ToStageID:     *req.StageID,
			ChangedByID:   actor.ID,
			ChangedByName: actor.Name,
		}
	}

	deal.UpdatedAt = time.Now().UTC()
	result, err := s.dealRepo.UpdateWithMove(ctx, deal, move)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	if result != nil && result.Moved {
		metrics.DealMovesTotal.Inc()
		deal.StageID = &move.ToStageID
	}

	s.invalidateBoard(ctx, tenantID)
	return deal, nil
}

func (s *PipelineService) DeleteDeal(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.dealRepo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDealNotFound
		}
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	s.invalidateBoard(ctx, tenantID)
	s.logger.Info("deal deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("deal_id", id.String()))
	return nil
}

// MoveDeal places a deal in another stage, refreshing updated_at and recording the transition.
// It returns the destination stage so callers can react to it.
func (s *PipelineService) MoveDeal(ctx context.Context, tenantID, dealID, stageID uuid.UUID, actor Actor) (*domain.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, tenantID, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("stage %s does not exist", stageID)
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	result, err := s.dealRepo.MoveToStage(ctx, repository.StageMove{
		TenantID:      tenantID,
		DealID:        dealID,
		ToStageID:     stageID,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to move deal: %w", err)
	}
	if !result.Moved {
		return stage, nil
	}

	metrics.DealMovesTotal.Inc()
	s.invalidateBoard(ctx, tenantID)

	fields := []zap.Field{
		zap.String("tenant_id", tenantID.String()),
		zap.String("deal_id", dealID.String()),
		zap.String("to_stage_id", stageID.String()),
		zap.String("changed_by", actor.ID),
	}
	if result.FromStageID != nil {
		fields = append(fields, zap.String("from_stage_id", result.FromStageID.String()))
	}
	s.logger.Info("deal moved", fields...)

	return stage, nil
}

// DealHistory returns the stage transitions of a deal, most recent first
func (s *PipelineService) DealHistory(ctx context.Context, tenantID, dealID uuid.UUID) ([]domain.DealStageHistory, error) {
	if _, err := s.GetDeal(ctx, tenantID, dealID); err != nil {
		return nil, err
	}
	history, err := s.historyRepo.ListByDeal(ctx, tenantID, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deal history: %w", err)
	}
	return history, nil
}

func (s *PipelineService) getStage(ctx context.Context, tenantID, id uuid.UUID) (*domain.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	return stage, nil
}

// ensureStageExists enforces that a deal only points at a stage of its own tenant
func (s *PipelineService) ensureStageExists(ctx context.Context, tenantID, stageID uuid.UUID) error {
	if _, err := s.stageRepo.GetByID(ctx, tenantID, stageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("stage %s does not exist", stageID)
		}
		return fmt.Errorf("failed to get stage: %w", err)
	}
	return nil
}

func (s *PipelineService) ensureContactExists(ctx context.Context, tenantID, contactID uuid.UUID) error {
	ok, err := s.contactRepo.ExistsInTenant(ctx, tenantID, contactID)
	if err != nil {
		return fmt.Errorf("failed to check contact: %w", err)
	}
	if !ok {
		return validationError("contact %s does not exist", contactID)
	}
	return nil
}

func (s *PipelineService) invalidateBoard(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cache.Bump(ctx, boardScope(tenantID)); err != nil {
		s.logger.Warn("failed to invalidate board cache",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}

func boardScope(tenantID uuid.UUID) string {
	return "board:" + tenantID.String()
}

func validateProbability(p int) error {
	if p < 0 || p > 100 {
		return validationError("probability must be between 0 and 100")
	}
	return nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
