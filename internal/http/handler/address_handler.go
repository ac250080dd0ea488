package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/postal"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddressHandler exposes postal code lookups used to autofill contact addresses
type AddressHandler struct {
	client *postal.Client
	logger *zap.Logger
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(client *postal.Client, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{client: client, logger: logger}
}

// LookupZip godoc
// @Summary Address by postal code
// @Tags Address
// @Produce json
// @Param zip path string true "Postal code, 8 digits, punctuation ignored"
// @Success 200 {object} domain.Address
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /address/zip/{zip} [get]
func (h *AddressHandler) LookupZip(w http.ResponseWriter, r *http.Request) {
	address, err := h.client.LookupZip(r.Context(), chi.URLParam(r, "zip"))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to look up postal code")
		return
	}
	respondJSON(w, http.StatusOK, address)
}

// Search godoc
// @Summary Search postal codes by street
// @Tags Address
// @Produce json
// @Param state query string true "State (UF)"
// @Param city query string true "City"
// @Param street query string true "Street fragment, at least 3 characters"
// @Success 200 {array} domain.Address
// @Failure 400 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /address/search [get]
func (h *AddressHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	addresses, err := h.client.Search(r.Context(), q.Get("state"), q.Get("city"), q.Get("street"))
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to search addresses")
		return
	}
	respondJSON(w, http.StatusOK, addresses)
}
