package handler

import (
	"net/http"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/service"
	"go.uber.org/zap"
)

// FinanceHandler creates the quotes and receivables offered after a deal reaches a proposal stage
type FinanceHandler struct {
	quoteService       *service.QuoteService
	transactionService *service.TransactionService
	logger             *zap.Logger
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(quoteService *service.QuoteService, transactionService *service.TransactionService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{
		quoteService:       quoteService,
		transactionService: transactionService,
		logger:             logger,
	}
}

// CreateQuote godoc
// @Summary Create quote
// @Description A quote linked to a deal inherits the deal's contact when none is given
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *FinanceHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionFinanceWrite) {
		return
	}

	var req domain.CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Create(r.Context(), user.TenantID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create quote")
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// ListDealQuotes godoc
// @Summary Quotes of a deal
// @Tags Finance
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /deals/{id}/quotes [get]
func (h *FinanceHandler) ListDealQuotes(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	dealID, ok := parseUUIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	quotes, err := h.quoteService.ListByDeal(r.Context(), user.TenantID, dealID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// CreateTransaction godoc
// @Summary Create transaction
// @Description Income transactions are receivables; they count toward lifetime value once received
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body domain.CreateTransactionRequest true "Transaction data"
// @Success 201 {object} domain.TransactionDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /transactions [post]
func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionFinanceWrite) {
		return
	}

	var req domain.CreateTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.transactionService.Create(r.Context(), user.TenantID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to create transaction")
		return
	}

	respondJSON(w, http.StatusCreated, tx)
}

// ReceiveTransaction godoc
// @Summary Mark receivable as received
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body domain.ReceiveTransactionRequest false "Amount actually paid"
// @Success 200 {object} domain.TransactionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /transactions/{id}/receive [post]
func (h *FinanceHandler) ReceiveTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok || !requirePermission(w, user, auth.PermissionFinanceWrite) {
		return
	}
	id, ok := parseUUIDParam(w, r, "id", "transaction")
	if !ok {
		return
	}

	var req domain.ReceiveTransactionRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.transactionService.MarkReceived(r.Context(), user.TenantID, id, req.PaidAmount)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to receive transaction")
		return
	}

	respondJSON(w, http.StatusOK, tx)
}

// ListContactQuotes godoc
// @Summary Quotes of a contact
// @Tags Finance
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {array} domain.QuoteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id}/quotes [get]
func (h *FinanceHandler) ListContactQuotes(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	contactID, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	quotes, err := h.quoteService.ListByContact(r.Context(), user.TenantID, contactID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// ListContactTransactions godoc
// @Summary Receivables and payables of a contact
// @Tags Finance
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {array} domain.TransactionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contacts/{id}/transactions [get]
func (h *FinanceHandler) ListContactTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	contactID, ok := parseUUIDParam(w, r, "id", "contact")
	if !ok {
		return
	}

	transactions, err := h.transactionService.ListByContact(r.Context(), user.TenantID, contactID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}
