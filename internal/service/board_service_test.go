package service_test

import (
	"context"
	"testing"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/service"
	"github.com/gestorpro/gestor-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dealDrop(dealID, fromStage, toStage uuid.UUID) *domain.DropEvent {
	return &domain.DropEvent{
		Type:        domain.DragTypeDeal,
		DraggableID: dealID.String(),
		Source:      domain.DropLocation{DroppableID: fromStage.String(), Index: 0},
		Destination: &domain.DropLocation{DroppableID: toStage.String(), Index: 0},
	}
}

func TestBoardService_HandleDrop_Deal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pipeline := createPipelineService(db, nil)
	board := service.NewBoardService(pipeline, zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()

	lead := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	proposal := testutil.CreateTestStage(t, db, tenant, "Proposta Enviada", 1)
	won := testutil.CreateTestStage(t, db, tenant, "Ganho", 2)
	deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "Consultoria", 8000)

	t.Run("drop on proposal stage offers follow-up", func(t *testing.T) {
		result, err := board.HandleDrop(ctx, tenant, dealDrop(deal.ID, lead.ID, proposal.ID), testActor)

		require.NoError(t, err)
		assert.True(t, result.Changed)
		require.NotNil(t, result.FollowUp)
		assert.Equal(t, deal.ID, result.FollowUp.DealID)
		assert.Equal(t, proposal.ID, result.FollowUp.StageID)
		assert.Equal(t, []domain.FollowUpAction{domain.FollowUpCreateQuote, domain.FollowUpCreateReceivable}, result.FollowUp.Actions)

		moved := result.Board.DealsInStage(proposal.ID)
		require.Len(t, moved, 1)
		assert.Equal(t, deal.ID, moved[0].ID)
	})

	t.Run("drop on other stage has no follow-up", func(t *testing.T) {
		result, err := board.HandleDrop(ctx, tenant, dealDrop(deal.ID, proposal.ID, won.ID), testActor)

		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Nil(t, result.FollowUp)
		assert.Len(t, result.Board.DealsInStage(won.ID), 1)
	})

	t.Run("every move is in the history", func(t *testing.T) {
		history, err := pipeline.DealHistory(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("drop without destination changes nothing", func(t *testing.T) {
		event := dealDrop(deal.ID, won.ID, lead.ID)
		event.Destination = nil

		result, err := board.HandleDrop(ctx, tenant, event, testActor)

		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Nil(t, result.FollowUp)
		assert.Len(t, result.Board.DealsInStage(won.ID), 1)
	})

	t.Run("drop back onto source changes nothing", func(t *testing.T) {
		result, err := board.HandleDrop(ctx, tenant, dealDrop(deal.ID, won.ID, won.ID), testActor)

		require.NoError(t, err)
		assert.False(t, result.Changed)
		history, err := pipeline.DealHistory(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("unknown destination stage", func(t *testing.T) {
		_, err := board.HandleDrop(ctx, tenant, dealDrop(deal.ID, won.ID, uuid.New()), testActor)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("malformed ids", func(t *testing.T) {
		event := dealDrop(deal.ID, won.ID, lead.ID)
		event.DraggableID = "deal-42"
		_, err := board.HandleDrop(ctx, tenant, event, testActor)
		assert.ErrorIs(t, err, service.ErrValidation)

		event = dealDrop(deal.ID, won.ID, lead.ID)
		event.Destination.DroppableID = "column-1"
		_, err = board.HandleDrop(ctx, tenant, event, testActor)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestBoardService_HandleDrop_Stage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	board := service.NewBoardService(createPipelineService(db, nil), zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()

	a := testutil.CreateTestStage(t, db, tenant, "A", 0)
	b := testutil.CreateTestStage(t, db, tenant, "B", 1)
	c := testutil.CreateTestStage(t, db, tenant, "C", 2)

	stageDrop := func(id uuid.UUID, from, to int) *domain.DropEvent {
		return &domain.DropEvent{
			Type:        domain.DragTypeStage,
			DraggableID: id.String(),
			Source:      domain.DropLocation{DroppableID: "board", Index: from},
			Destination: &domain.DropLocation{DroppableID: "board", Index: to},
		}
	}
	order := func(result *service.DropResult) []uuid.UUID {
		ids := make([]uuid.UUID, len(result.Board.Stages))
		for i, s := range result.Board.Stages {
			ids[i] = s.ID
		}
		return ids
	}

	result, err := board.HandleDrop(ctx, tenant, stageDrop(a.ID, 0, 2), testActor)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Nil(t, result.FollowUp)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, a.ID}, order(result))
	for i, s := range result.Board.Stages {
		assert.Equal(t, i, s.Position)
	}

	// indexes past the end are clamped
	result, err = board.HandleDrop(ctx, tenant, stageDrop(b.ID, 0, 10), testActor)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, order(result))

	_, err = board.HandleDrop(ctx, tenant, stageDrop(uuid.New(), 0, 1), testActor)
	assert.ErrorIs(t, err, service.ErrStageNotFound)
}

func TestBoardService_HandleDrop_DealWithinItsColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	pipeline := createPipelineService(db, nil)
	board := service.NewBoardService(pipeline, zap.NewNop())
	ctx := context.Background()
	tenant := uuid.New()

	proposal := testutil.CreateTestStage(t, db, tenant, "Proposal", 0)
	deal := testutil.CreateTestDeal(t, db, tenant, &proposal.ID, nil, "Consultoria", 8000)

	event := dealDrop(deal.ID, proposal.ID, proposal.ID)
	event.Destination.Index = 2

	result, err := board.HandleDrop(ctx, tenant, event, testActor)
	require.NoError(t, err)
	assert.NotNil(t, result.FollowUp)
	assert.Len(t, result.Board.DealsInStage(proposal.ID), 1)

	history, err := pipeline.DealHistory(ctx, tenant, deal.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
