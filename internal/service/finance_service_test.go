package service_test

import (
	"context"
	"testing"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/service"
	"github.com/gestorpro/gestor-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQuoteService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pipeline := createPipelineService(db, nil)
	svc := service.NewQuoteService(repository.NewQuoteRepository(db), pipeline, zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()
	contact := testutil.CreateTestContact(t, db, tenant, uuid.New(), "Padaria")
	deal := testutil.CreateTestDeal(t, db, tenant, nil, &contact.ID, "Cardápio digital", 1200)

	t.Run("inherits contact from deal and defaults to draft", func(t *testing.T) {
		quote, err := svc.Create(ctx, tenant, &domain.CreateQuoteRequest{
			DealID:      &deal.ID,
			Title:       "Proposta cardápio",
			TotalAmount: 1200,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		require.NotNil(t, quote.ContactID)
		assert.Equal(t, contact.ID, *quote.ContactID)

		quotes, err := svc.ListByDeal(ctx, tenant, deal.ID)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, quote.ID, quotes[0].ID)
	})

	t.Run("deal of another tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), &domain.CreateQuoteRequest{DealID: &deal.ID, Title: "x"})
		assert.ErrorIs(t, err, service.ErrDealNotFound)
	})
}

func TestTransactionService_CreateAndReceive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pipeline := createPipelineService(db, nil)
	svc := service.NewTransactionService(repository.NewTransactionRepository(db), pipeline, zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()
	contact := testutil.CreateTestContact(t, db, tenant, uuid.New(), "Padaria")
	deal := testutil.CreateTestDeal(t, db, tenant, nil, &contact.ID, "Cardápio digital", 1200)

	receivable, err := svc.Create(ctx, tenant, &domain.CreateTransactionRequest{
		DealID:      &deal.ID,
		Description: "Entrada 50%",
		Type:        domain.TransactionTypeIncome,
		Amount:      600,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, receivable.Status)
	require.NotNil(t, receivable.ContactID)
	assert.Equal(t, contact.ID, *receivable.ContactID)

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := svc.Create(ctx, tenant, &domain.CreateTransactionRequest{Description: "x", Type: domain.TransactionTypeIncome})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("negative paid amount", func(t *testing.T) {
		_, err := svc.MarkReceived(ctx, tenant, receivable.ID, testutil.Ptr(-1.0))
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("received with partial payment", func(t *testing.T) {
		received, err := svc.MarkReceived(ctx, tenant, receivable.ID, testutil.Ptr(550.0))
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusReceived, received.Status)
		require.NotNil(t, received.PaidAmount)
		assert.Equal(t, 550.0, *received.PaidAmount)
	})

	t.Run("expenses cannot be received", func(t *testing.T) {
		expense, err := svc.Create(ctx, tenant, &domain.CreateTransactionRequest{
			Description: "Hospedagem",
			Type:        domain.TransactionTypeExpense,
			Amount:      90,
		})
		require.NoError(t, err)

		_, err = svc.MarkReceived(ctx, tenant, expense.ID, nil)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("cancelled cannot be received", func(t *testing.T) {
		cancelled := testutil.CreateTestTransaction(t, db, tenant, contact.ID, domain.Transaction{
			Type:   domain.TransactionTypeIncome,
			Status: domain.TransactionStatusCancelled,
			Amount: 10,
		})
		_, err := svc.MarkReceived(ctx, tenant, cancelled.ID, nil)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := svc.MarkReceived(ctx, tenant, uuid.New(), nil)
		assert.ErrorIs(t, err, service.ErrTransactionNotFound)
	})
}

func TestFinanceServices_ListByContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pipeline := createPipelineService(db, nil)
	quotes := service.NewQuoteService(repository.NewQuoteRepository(db), pipeline, zap.NewNop())
	transactions := service.NewTransactionService(repository.NewTransactionRepository(db), pipeline, zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()
	contact := testutil.CreateTestContact(t, db, tenant, uuid.New(), "Oficina Lima")

	_, err := quotes.Create(ctx, tenant, &domain.CreateQuoteRequest{ContactID: &contact.ID, Title: "Revisão", TotalAmount: 450})
	require.NoError(t, err)
	_, err = transactions.Create(ctx, tenant, &domain.CreateTransactionRequest{
		ContactID:   &contact.ID,
		Description: "Revisão",
		Type:        domain.TransactionTypeIncome,
		Amount:      450,
	})
	require.NoError(t, err)

	gotQuotes, err := quotes.ListByContact(ctx, tenant, contact.ID)
	require.NoError(t, err)
	require.Len(t, gotQuotes, 1)
	assert.Equal(t, "R$ 450,00", gotQuotes[0].TotalFormatted)

	gotTransactions, err := transactions.ListByContact(ctx, tenant, contact.ID)
	require.NoError(t, err)
	require.Len(t, gotTransactions, 1)
	assert.Equal(t, domain.TransactionStatusPending, gotTransactions[0].Status)

	t.Run("other tenant sees nothing", func(t *testing.T) {
		other := uuid.New()
		q, err := quotes.ListByContact(ctx, other, contact.ID)
		require.NoError(t, err)
		assert.Empty(t, q)

		tx, err := transactions.ListByContact(ctx, other, contact.ID)
		require.NoError(t, err)
		assert.Empty(t, tx)
	})
}
