package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/service"
	"go.uber.org/zap"
)

// PipelineHandler serves the Kanban board and its drag-and-drop gestures
type PipelineHandler struct {
	pipeline *service.PipelineService
	board    *service.BoardService
	logger   *zap.Logger
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(pipeline *service.PipelineService, board *service.BoardService, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline, board: board, logger: logger}
}

// GetBoard godoc
// @Summary Pipeline board
// @Description Stages in position order, each with its deals and total value
// @Tags Pipeline
// @Produce json
// @Success 200 {object} domain.BoardDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pipeline/board [get]
func (h *PipelineHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	board, err := h.pipeline.Board(r.Context(), user.TenantID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to load board")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToBoardDTO(board))
}

// Drop godoc
// @Summary Apply a drag-and-drop gesture
// @Description A deal dropped on a stage moves there. A stage dropped on the board is reordered.
// @Description When a deal lands on a proposal stage the response carries a follow-up prompt.
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param request body domain.DropEvent true "Drop event"
// @Success 200 {object} domain.DropResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pipeline/drop [post]
func (h *PipelineHandler) Drop(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var event domain.DropEvent
	if !decodeAndValidate(w, r, &event) {
		return
	}

	permission := auth.PermissionDealsWrite
	if event.Type == domain.DragTypeStage {
		permission = auth.PermissionStagesManage
	}
	if !requirePermission(w, user, permission) {
		return
	}

	result, err := h.board.HandleDrop(r.Context(), user.TenantID, &event, actorOf(user))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to apply drop")
		return
	}

	respondJSON(w, http.StatusOK, domain.DropResultDTO{
		Changed:  result.Changed,
		Board:    mapper.ToBoardDTO(result.Board),
		FollowUp: result.FollowUp,
	})
}
