package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/service"
	"go.uber.org/zap"
)

// DealHandler handles HTTP requests for deals
type DealHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

// NewDealHandler creates a new DealHandler
func NewDealHandler(pipeline *service.PipelineService, logger *zap.Logger) *DealHandler {
	return &DealHandler{pipeline: pipeline, logger: logger}
}

// ListDeals godoc
// @Summary List deals
// @Tags Deals
// @Produce json
// @Success 200 {array} domain.DealDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals [get]
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	deals, err := h.pipeline.ListDeals(r.Context(), user.TenantID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list deals")
		return
	}

	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = mapper.ToDealDTO(&deals[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GetDeal godoc
// @Summary Get deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [get]
func (h *DealHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	deal, err := h.pipeline.GetDeal(r.Context(), user.TenantID, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// CreateDeal godoc
// @Summary Create deal
// @Tags Deals
// @Accept json
// @Produce json
// @Param request body domain.CreateDealRequest true "Deal data"
// @Success 201 {object} domain.DealDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals [post]
func (h *DealHandler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionDealsWrite) {
		return
	}

	var req domain.CreateDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.pipeline.CreateDeal(r.Context(), user.TenantID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create deal")
		return
	}

	w.Header().Set("Location", "/api/v1/deals/"+deal.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToDealDTO(deal))
}

// UpdateDeal godoc
// @Summary Update deal
// @Description Partial update. A stage change is recorded in the deal's stage history.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.UpdateDealRequest true "Fields to change"
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [put]
func (h *DealHandler) UpdateDeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionDealsWrite) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	var req domain.UpdateDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.pipeline.UpdateDeal(r.Context(), user.TenantID, id, &req, actorOf(user))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// DeleteDeal godoc
// @Summary Delete deal
// @Description Requires the deals:delete permission
// @Tags Deals
// @Param id path string true "Deal ID"
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id} [delete]
func (h *DealHandler) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionDealsDelete) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	if err := h.pipeline.DeleteDeal(r.Context(), user.TenantID, id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete deal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveDeal godoc
// @Summary Move deal to stage
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.MoveDealRequest true "Target stage"
// @Success 200 {object} domain.DealDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/move [post]
func (h *DealHandler) MoveDeal(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionDealsWrite) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	var req domain.MoveDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.pipeline.MoveDeal(r.Context(), user.TenantID, id, req.StageID, actorOf(user)); err != nil {
		handleServiceError(w, h.logger, err, "Failed to move deal")
		return
	}

	h.GetDeal(w, r)
}

// GetHistory godoc
// @Summary Deal stage history
// @Description Stage changes of the deal, newest first
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.DealStageHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/history [get]
func (h *DealHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	history, err := h.pipeline.DealHistory(r.Context(), user.TenantID, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get deal history")
		return
	}

	dtos := make([]domain.DealStageHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToDealStageHistoryDTO(&history[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}
