package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServices struct {
	pipeline     *service.PipelineService
	board        *service.BoardService
	contacts     *service.ContactService
	history      *service.HistoryService
	quotes       *service.QuoteService
	transactions *service.TransactionService
}

func createTestServices(db *gorm.DB) *testServices {
	logger := zap.NewNop()
	dealRepo := repository.NewDealRepository(db)
	contactRepo := repository.NewContactRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	pipeline := service.NewPipelineService(
		repository.NewStageRepository(db),
		dealRepo,
		repository.NewDealStageHistoryRepository(db),
		contactRepo,
		nil,
		time.Minute,
		logger,
	)
	return &testServices{
		pipeline:     pipeline,
		board:        service.NewBoardService(pipeline, logger),
		contacts:     service.NewContactService(contactRepo, logger),
		history:      service.NewHistoryService(dealRepo, quoteRepo, transactionRepo, logger),
		quotes:       service.NewQuoteService(quoteRepo, pipeline, logger),
		transactions: service.NewTransactionService(transactionRepo, pipeline, logger),
	}
}

func testUser(tenantID uuid.UUID, roles ...auth.Role) *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		TenantID:    tenantID,
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       roles,
	}
}

// newRequest builds a request carrying the user and the chi URL params
func newRequest(t *testing.T, method, target string, body interface{}, user *auth.UserContext, params map[string]string) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := context.Background()
	if user != nil {
		ctx = auth.WithUserContext(ctx, user)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}
