package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/http/handler"
	"github.com/gestorpro/gestor-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFinanceHandler_FollowUpFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := createTestServices(db)
	h := handler.NewFinanceHandler(svcs.quotes, svcs.transactions, zap.NewNop())
	tenant := uuid.New()
	sales := testUser(tenant, auth.RoleSales)
	contact := testutil.CreateTestContact(t, db, tenant, sales.UserID, "Cliente")
	deal := testutil.CreateTestDeal(t, db, tenant, nil, &contact.ID, "Site", 2000)
	dealParams := map[string]string{"id": deal.ID.String()}

	t.Run("create quote from deal", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateQuote(rr, newRequest(t, http.MethodPost, "/quotes", domain.CreateQuoteRequest{
			DealID:      &deal.ID,
			Title:       "Proposta site",
			TotalAmount: 2000,
		}, sales, nil))

		require.Equal(t, http.StatusCreated, rr.Code)
		var quote domain.QuoteDTO
		decodeBody(t, rr, &quote)
		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		assert.Equal(t, "R$ 2.000,00", quote.TotalFormatted)
	})

	t.Run("list deal quotes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListDealQuotes(rr, newRequest(t, http.MethodGet, "/deals/"+deal.ID.String()+"/quotes", nil, sales, dealParams))

		require.Equal(t, http.StatusOK, rr.Code)
		var quotes []domain.QuoteDTO
		decodeBody(t, rr, &quotes)
		assert.Len(t, quotes, 1)
	})

	t.Run("quotes of unknown deal", func(t *testing.T) {
		id := uuid.New().String()
		rr := httptest.NewRecorder()
		h.ListDealQuotes(rr, newRequest(t, http.MethodGet, "/deals/"+id+"/quotes", nil, sales, map[string]string{"id": id}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	var receivable domain.TransactionDTO
	t.Run("create receivable", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateTransaction(rr, newRequest(t, http.MethodPost, "/transactions", domain.CreateTransactionRequest{
			DealID:      &deal.ID,
			Description: "Entrada",
			Type:        domain.TransactionTypeIncome,
			Amount:      1000,
		}, sales, nil))

		require.Equal(t, http.StatusCreated, rr.Code)
		decodeBody(t, rr, &receivable)
		assert.Equal(t, domain.TransactionStatusPending, receivable.Status)
	})

	t.Run("zero amount is invalid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateTransaction(rr, newRequest(t, http.MethodPost, "/transactions", domain.CreateTransactionRequest{
			Description: "Entrada",
			Type:        domain.TransactionTypeIncome,
		}, sales, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("receive without body", func(t *testing.T) {
		require.NotEqual(t, uuid.Nil, receivable.ID)
		rr := httptest.NewRecorder()
		h.ReceiveTransaction(rr, newRequest(t, http.MethodPost, "/transactions/"+receivable.ID.String()+"/receive", nil, sales,
			map[string]string{"id": receivable.ID.String()}))

		require.Equal(t, http.StatusOK, rr.Code)
		var received domain.TransactionDTO
		decodeBody(t, rr, &received)
		assert.Equal(t, domain.TransactionStatusReceived, received.Status)
		assert.Nil(t, received.PaidAmount)
	})

	t.Run("contact listings", func(t *testing.T) {
		contactParams := map[string]string{"id": contact.ID.String()}

		rr := httptest.NewRecorder()
		h.ListContactQuotes(rr, newRequest(t, http.MethodGet, "/contacts/"+contact.ID.String()+"/quotes", nil, sales, contactParams))
		require.Equal(t, http.StatusOK, rr.Code)
		var quotes []domain.QuoteDTO
		decodeBody(t, rr, &quotes)
		assert.Len(t, quotes, 1)

		rr = httptest.NewRecorder()
		h.ListContactTransactions(rr, newRequest(t, http.MethodGet, "/contacts/"+contact.ID.String()+"/transactions", nil, sales, contactParams))
		require.Equal(t, http.StatusOK, rr.Code)
		var transactions []domain.TransactionDTO
		decodeBody(t, rr, &transactions)
		require.Len(t, transactions, 1)
		assert.Equal(t, domain.TransactionStatusReceived, transactions[0].Status)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.CreateQuote(rr, newRequest(t, http.MethodPost, "/quotes", domain.CreateQuoteRequest{Title: "x"},
			testUser(tenant, auth.RoleViewer), nil))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
