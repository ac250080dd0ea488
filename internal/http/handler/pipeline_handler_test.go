package handler_test

import (
	"bytes"
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

func TestPipelineHandler_GetBoard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := createTestServices(db)
	h := handler.NewPipelineHandler(svcs.pipeline, svcs.board, zap.NewNop())
	tenant := uuid.New()

	lead := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	testutil.CreateTestStage(t, db, tenant, "Proposta", 1)
	testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "Site", 1500)
	testutil.CreateTestDeal(t, db, tenant, nil, nil, "Sem etapa", 10)

	rr := httptest.NewRecorder()
	h.GetBoard(rr, newRequest(t, http.MethodGet, "/pipeline/board", nil, testUser(tenant, auth.RoleViewer), nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var board domain.BoardDTO
	decodeBody(t, rr, &board)
	require.Len(t, board.Columns, 2)
	assert.Equal(t, "Lead", board.Columns[0].Stage.Name)
	assert.Len(t, board.Columns[0].Deals, 1)
	assert.Equal(t, "R$ 1.500,00", board.Columns[0].TotalValueFormatted)
	assert.Len(t, board.Unassigned, 1)
}

func TestPipelineHandler_Drop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := createTestServices(db)
	h := handler.NewPipelineHandler(svcs.pipeline, svcs.board, zap.NewNop())
	tenant := uuid.New()

	lead := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	proposal := testutil.CreateTestStage(t, db, tenant, "Proposta", 1)
	deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "Site", 1500)

	dealEvent := domain.DropEvent{
		Type:        domain.DragTypeDeal,
		DraggableID: deal.ID.String(),
		Source:      domain.DropLocation{DroppableID: lead.ID.String(), Index: 0},
		Destination: &domain.DropLocation{DroppableID: proposal.ID.String(), Index: 0},
	}

	t.Run("viewer cannot move deals", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Drop(rr, newRequest(t, http.MethodPost, "/pipeline/drop", dealEvent, testUser(tenant, auth.RoleViewer), nil))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("sales cannot reorder stages", func(t *testing.T) {
		event := domain.DropEvent{
			Type:        domain.DragTypeStage,
			DraggableID: proposal.ID.String(),
			Source:      domain.DropLocation{DroppableID: "board", Index: 1},
			Destination: &domain.DropLocation{DroppableID: "board", Index: 0},
		}
		rr := httptest.NewRecorder()
		h.Drop(rr, newRequest(t, http.MethodPost, "/pipeline/drop", event, testUser(tenant, auth.RoleSales), nil))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("deal dropped on proposal stage", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Drop(rr, newRequest(t, http.MethodPost, "/pipeline/drop", dealEvent, testUser(tenant, auth.RoleSales), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.DropResultDTO
		decodeBody(t, rr, &result)
		assert.True(t, result.Changed)
		require.NotNil(t, result.FollowUp)
		assert.Equal(t, "Proposta", result.FollowUp.StageName)
		assert.Len(t, result.FollowUp.Actions, 2)
		assert.Len(t, result.Board.Columns[1].Deals, 1)
	})

	t.Run("unknown type is rejected by validation", func(t *testing.T) {
		event := dealEvent
		event.Type = "column"
		rr := httptest.NewRecorder()
		h.Drop(rr, newRequest(t, http.MethodPost, "/pipeline/drop", event, testUser(tenant, auth.RoleAdmin), nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pipeline/drop", bytes.NewBufferString("{"))
		req = req.WithContext(auth.WithUserContext(req.Context(), testUser(tenant, auth.RoleAdmin)))
		rr := httptest.NewRecorder()
		h.Drop(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Drop(rr, newRequest(t, http.MethodPost, "/pipeline/drop", dealEvent, nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
