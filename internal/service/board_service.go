package service

import (
	"context"
	"fmt"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DropResult is the board after a drop plus the optional follow-up prompt
type DropResult struct {
	Changed  bool
	Board    *domain.Board
	FollowUp *domain.FollowUpPrompt
}

// BoardService turns drag-and-drop gestures on the pipeline board into pipeline mutations
type BoardService struct {
	pipeline *PipelineService
	logger   *zap.Logger
}

func NewBoardService(pipeline *PipelineService, logger *zap.Logger) *BoardService {
	return &BoardService{pipeline: pipeline, logger: logger}
}

// HandleDrop applies a drop event and returns the refreshed board.
//
// A drop without destination, or back onto its source position, changes nothing.
// A deal dropped on a stage is moved there; when that stage is a proposal stage the
// result carries a follow-up prompt offering to create a quote or a receivable.
// A stage dropped elsewhere on the board is spliced into its new index and the
// whole order is persisted. Repository errors are returned unchanged.
func (s *BoardService) HandleDrop(ctx context.Context, tenantID uuid.UUID, event *domain.DropEvent, actor Actor) (*DropResult, error) {
	if event.IsNoop() {
		board, err := s.pipeline.Board(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return &DropResult{Board: board}, nil
	}

	var followUp *domain.FollowUpPrompt
	switch event.Type {
	case domain.DragTypeDeal:
		prompt, err := s.dropDeal(ctx, tenantID, event, actor)
		if err != nil {
			return nil, err
		}
		followUp = prompt
	case domain.DragTypeStage:
		if err := s.dropStage(ctx, tenantID, event); err != nil {
			return nil, err
		}
	default:
		return nil, validationError("unknown drag type %q", event.Type)
	}

	board, err := s.pipeline.Board(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &DropResult{Changed: true, Board: board, FollowUp: followUp}, nil
}

func (s *BoardService) dropDeal(ctx context.Context, tenantID uuid.UUID, event *domain.DropEvent, actor Actor) (*domain.FollowUpPrompt, error) {
	dealID, err := uuid.Parse(event.DraggableID)
	if err != nil {
		return nil, validationError("invalid deal id %q", event.DraggableID)
	}
	stageID, err := uuid.Parse(event.Destination.DroppableID)
	if err != nil {
		return nil, validationError("invalid stage id %q", event.Destination.DroppableID)
	}

	stage, err := s.pipeline.MoveDeal(ctx, tenantID, dealID, stageID, actor)
	if err != nil {
		return nil, err
	}

	if !domain.IsProposalStage(stage.Name) {
		return nil, nil
	}

	metrics.FollowUpPromptsTotal.Inc()
	s.logger.Debug("deal entered proposal stage",
		zap.String("deal_id", dealID.String()),
		zap.String("stage", stage.Name))

	return &domain.FollowUpPrompt{
		DealID:    dealID,
		StageID:   stage.ID,
		StageName: stage.Name,
		Actions:   []domain.FollowUpAction{domain.FollowUpCreateQuote, domain.FollowUpCreateReceivable},
	}, nil
}

func (s *BoardService) dropStage(ctx context.Context, tenantID uuid.UUID, event *domain.DropEvent) error {
	stageID, err := uuid.Parse(event.DraggableID)
	if err != nil {
		return validationError("invalid stage id %q", event.DraggableID)
	}

	stages, err := s.pipeline.ListStages(ctx, tenantID)
	if err != nil {
		return err
	}

	order, err := moveStage(stages, stageID, event.Destination.Index)
	if err != nil {
		return err
	}
	return s.pipeline.ReorderStages(ctx, tenantID, order)
}

// moveStage removes the stage from the ordered list and reinserts it at index,
// clamped to the list bounds, returning the resulting id order.
func moveStage(stages []domain.Stage, stageID uuid.UUID, index int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(stages))
	found := false
	for _, st := range stages {
		if st.ID == stageID {
			found = true
			continue
		}
		ids = append(ids, st.ID)
	}
	if !found {
		return nil, fmt.Errorf("stage %s: %w", stageID, ErrStageNotFound)
	}

	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}

	ids = append(ids, uuid.Nil)
	copy(ids[index+1:], ids[index:])
	ids[index] = stageID
	return ids, nil
}
