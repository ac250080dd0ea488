package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/http/handler"
	"github.com/gestorpro/gestor-api/internal/http/middleware"
	"github.com/gestorpro/gestor-api/internal/http/router"
	"github.com/gestorpro/gestor-api/internal/postal"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/service"
	"github.com/gestorpro/gestor-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAPIKey = "test-api-key"

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Auth:   config.AuthConfig{JWTSecret: "secret", Issuer: "gestor", APIKey: testAPIKey},
		Server: config.ServerConfig{RequestTimeout: 5},
		CORS:   config.CORSConfig{AllowedMethods: []string{"GET", "POST"}},
	}

	dealRepo := repository.NewDealRepository(db)
	contactRepo := repository.NewContactRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	pipeline := service.NewPipelineService(
		repository.NewStageRepository(db), dealRepo, repository.NewDealStageHistoryRepository(db),
		contactRepo, nil, time.Minute, log)
	board := service.NewBoardService(pipeline, log)
	contacts := service.NewContactService(contactRepo, log)
	history := service.NewHistoryService(dealRepo, quoteRepo, transactionRepo, log)

	rt := router.NewRouter(cfg, log, db, nil,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		router.Handlers{
			Pipeline: handler.NewPipelineHandler(pipeline, board, log),
			Stage:    handler.NewStageHandler(pipeline, log),
			Deal:     handler.NewDealHandler(pipeline, log),
			Contact:  handler.NewContactHandler(contacts, history, log),
			Finance: handler.NewFinanceHandler(
				service.NewQuoteService(quoteRepo, pipeline, log),
				service.NewTransactionService(transactionRepo, pipeline, log),
				log),
			Address: handler.NewAddressHandler(postal.NewClient(postal.Config{BaseURL: "http://127.0.0.1:1"}, nil, log), log),
		})
	return rt.Setup(), db
}

func apiRequest(method, path string, tenant uuid.UUID, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set(auth.TenantHeader, tenant.String())
	return req
}

func TestRouter_Health(t *testing.T) {
	h, _ := setupRouter(t)

	for _, path := range []string{"/health", "/health/db", "/health/ready"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	h, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/pipeline/board", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_PipelineFlow(t *testing.T) {
	h, db := setupRouter(t)
	tenant := uuid.New()

	var lead, proposal domain.StageDTO
	for _, s := range []struct {
		name string
		dst  *domain.StageDTO
	}{{"Lead", &lead}, {"Proposta", &proposal}} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, apiRequest(http.MethodPost, "/api/v1/stages", tenant, domain.CreateStageRequest{Name: s.name}))
		require.Equal(t, http.StatusCreated, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), s.dst))
	}
	assert.Equal(t, 1, proposal.Position)

	deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "Site", 500)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, apiRequest(http.MethodPost, "/api/v1/pipeline/drop", tenant, domain.DropEvent{
		Type:        domain.DragTypeDeal,
		DraggableID: deal.ID.String(),
		Source:      domain.DropLocation{DroppableID: lead.ID.String()},
		Destination: &domain.DropLocation{DroppableID: proposal.ID.String()},
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	var result domain.DropResultDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.NotNil(t, result.FollowUp)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, apiRequest(http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/history", tenant, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var history []domain.DealStageHistoryDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "System", history[0].ChangedByName)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, apiRequest(http.MethodDelete, "/api/v1/stages/"+proposal.ID.String(), tenant, nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	// another tenant sees an empty board
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, apiRequest(http.MethodGet, "/api/v1/pipeline/board", uuid.New(), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var board domain.BoardDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Empty(t, board.Columns)
}

func TestRouter_AddressValidation(t *testing.T) {
	h, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, apiRequest(http.MethodGet, "/api/v1/address/zip/123", uuid.New(), nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
