package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/service"
	"go.uber.org/zap"
)

// StageHandler handles HTTP requests for pipeline stages
type StageHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

// NewStageHandler creates a new StageHandler
func NewStageHandler(pipeline *service.PipelineService, logger *zap.Logger) *StageHandler {
	return &StageHandler{pipeline: pipeline, logger: logger}
}

// ListStages godoc
// @Summary List stages
// @Description Pipeline stages of the tenant ordered by position
// @Tags Stages
// @Produce json
// @Success 200 {array} domain.StageDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages [get]
func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stages, err := h.pipeline.ListStages(r.Context(), user.TenantID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list stages")
		return
	}

	dtos := make([]domain.StageDTO, len(stages))
	for i := range stages {
		dtos[i] = mapper.ToStageDTO(&stages[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// CreateStage godoc
// @Summary Create stage
// @Description Without a position the stage is appended after the last one
// @Tags Stages
// @Accept json
// @Produce json
// @Param request body domain.CreateStageRequest true "Stage data"
// @Success 201 {object} domain.StageDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages [post]
func (h *StageHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionStagesManage) {
		return
	}

	var req domain.CreateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.pipeline.CreateStage(r.Context(), user.TenantID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create stage")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToStageDTO(stage))
}

// UpdateStage godoc
// @Summary Update stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param request body domain.UpdateStageRequest true "Fields to change"
// @Success 200 {object} domain.StageDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/{id} [put]
func (h *StageHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionStagesManage) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "stage")
	if !ok {
		return
	}

	var req domain.UpdateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.pipeline.UpdateStage(r.Context(), user.TenantID, id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update stage")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToStageDTO(stage))
}

// DeleteStage godoc
// @Summary Delete stage
// @Description Refused with 409 while any deal still sits in the stage
// @Tags Stages
// @Param id path string true "Stage ID"
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/{id} [delete]
func (h *StageHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionStagesDelete) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "stage")
	if !ok {
		return
	}

	if err := h.pipeline.DeleteStage(r.Context(), user.TenantID, id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete stage")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderStages godoc
// @Summary Reorder stages
// @Description Each listed stage gets its index in the list as position. All positions change or none do.
// @Tags Stages
// @Accept json
// @Produce json
// @Param request body domain.ReorderStagesRequest true "Stage ids in their new order"
// @Success 200 {array} domain.StageDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stages/order [put]
func (h *StageHandler) ReorderStages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionStagesManage) {
		return
	}

	var req domain.ReorderStagesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.pipeline.ReorderStages(r.Context(), user.TenantID, req.StageIDs); err != nil {
		handleServiceError(w, h.logger, err, "Failed to reorder stages")
		return
	}

	h.ListStages(w, r)
}
