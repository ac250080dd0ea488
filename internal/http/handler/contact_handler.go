package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/mapper"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/service"
	"go.uber.org/zap"
)

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	contactService *service.ContactService
	historyService *service.HistoryService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *service.ContactService, historyService *service.HistoryService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		historyService: historyService,
		logger:         logger,
	}
}

// ListContacts godoc
// @Summary List contacts
// @Description List the caller's contacts, ordered by name by default
// @Tags Contacts
// @Produce json
// @Param search query string false "Search by name, email or tax id"
// @Param category query string false "Filter by category" Enums(client, supplier)
// @Param sortBy query string false "Sort field" Enums(name, createdAt, city)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {array} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts [get]
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repository.ContactFilter{
		Search:   q.Get("search"),
		Category: domain.ContactCategory(q.Get("category")),
	}
	sort := repository.SortConfig{
		Field: q.Get("sortBy"),
		Order: repository.ParseSortOrder(q.Get("sortOrder")),
	}

	contacts, err := h.contactService.List(r.Context(), ownerOf(user), filter, sort)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list contacts")
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// GetContact godoc
// @Summary Get contact
// @Tags Contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	contact, err := h.contactService.GetByID(r.Context(), ownerOf(user), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// CreateContact godoc
// @Summary Create contact
// @Description Create a client or supplier. The phone number is stored with the country calling code.
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body domain.CreateContactRequest true "Contact data"
// @Success 201 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionContactsWrite) {
		return
	}

	var req domain.CreateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.contactService.Create(r.Context(), ownerOf(user), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create contact")
		return
	}

	w.Header().Set("Location", "/api/v1/contacts/"+contact.ID.String())
	respondJSON(w, http.StatusCreated, contact)
}

// UpdateContact godoc
// @Summary Update contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body domain.UpdateContactRequest true "Contact data"
// @Success 200 {object} domain.ContactDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [put]
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionContactsWrite) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	var req domain.UpdateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contact, err := h.contactService.Update(r.Context(), ownerOf(user), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to update contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// DeleteContact godoc
// @Summary Delete contact
// @Description Requires the contacts:delete permission. Deals keep their data and lose the contact link.
// @Tags Contacts
// @Param id path string true "Contact ID"
// @Success 204 "No Content"
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionContactsDelete) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), ownerOf(user), id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to delete contact")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTimeline godoc
// @Summary Contact timeline
// @Description Deals, quotes and transactions of the contact, newest first, with the lifetime value of received income
// @Tags Contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} domain.TimelineDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id}/timeline [get]
func (h *ContactHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	if _, err := h.contactService.GetByID(r.Context(), ownerOf(user), id); err != nil {
		handleServiceError(w, h.logger, err, "Failed to get contact")
		return
	}

	timeline, err := h.historyService.BuildTimeline(r.Context(), user.TenantID, id)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to build timeline")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToTimelineDTO(timeline))
}
