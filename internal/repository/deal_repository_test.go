package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/gestorpro/gestor-api/internal/domain"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/gestorpro/gestor-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDealRepository_MoveToStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	ctx := context.Background()
	tenant := uuid.New()

	lead := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	won := testutil.CreateTestStage(t, db, tenant, "Ganho", 1)
	deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "ERP", 100)

	result, err := repo.MoveToStage(ctx, repository.StageMove{
		TenantID:      tenant,
		DealID:        deal.ID,
		ToStageID:     won.ID,
		ChangedByID:   "u1",
		ChangedByName: "Ana",
	})
	require.NoError(t, err)
	assert.True(t, result.Moved)
	require.NotNil(t, result.FromStageID)
	assert.Equal(t, lead.ID, *result.FromStageID)

	got, err := repo.GetByID(ctx, tenant, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, won.ID, *got.StageID)

	history, err := historyRepo.ListByDeal(ctx, tenant, deal.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Ana", history[0].ChangedByName)

	t.Run("same stage writes nothing", func(t *testing.T) {
		result, err := repo.MoveToStage(ctx, repository.StageMove{TenantID: tenant, DealID: deal.ID, ToStageID: won.ID, ChangedByID: "u1"})
		require.NoError(t, err)
		assert.False(t, result.Moved)

		history, err := historyRepo.ListByDeal(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("other tenant cannot move the deal", func(t *testing.T) {
		_, err := repo.MoveToStage(ctx, repository.StageMove{TenantID: uuid.New(), DealID: deal.ID, ToStageID: lead.ID})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		history, err := historyRepo.ListByDeal(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestDealRepository_DeleteRemovesHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)
	ctx := context.Background()
	tenant := uuid.New()
	stage := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, tenant, nil, nil, "ERP", 100)

	_, err := repo.MoveToStage(ctx, repository.StageMove{TenantID: tenant, DealID: deal.ID, ToStageID: stage.ID, ChangedByID: "u1"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, tenant, deal.ID))

	var count int64
	require.NoError(t, db.Model(&domain.DealStageHistory{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDealRepository_GetStageTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)
	tenant := uuid.New()
	stage := testutil.CreateTestStage(t, db, tenant, "Lead", 0)

	testutil.CreateTestDeal(t, db, tenant, &stage.ID, nil, "a", 100)
	testutil.CreateTestDeal(t, db, tenant, &stage.ID, nil, "b", 50.5)
	testutil.CreateTestDeal(t, db, tenant, nil, nil, "loose", 10)
	lost := testutil.CreateTestDeal(t, db, tenant, &stage.ID, nil, "lost", 1000)
	require.NoError(t, db.Model(lost).Update("status", domain.DealStatusLost).Error)

	totals, err := repo.GetStageTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byStage := map[string]repository.StageTotals{}
	for _, tt := range totals {
		key := "none"
		if tt.StageID != nil {
			key = tt.StageID.String()
		}
		assert.Equal(t, tenant, tt.TenantID)
		byStage[key] = tt
	}
	assert.Equal(t, int64(2), byStage[stage.ID.String()].Count)
	assert.InDelta(t, 150.5, byStage[stage.ID.String()].TotalValue, 0.001)
	assert.Equal(t, int64(1), byStage["none"].Count)
}

func TestDealStageHistoryRepository_CountMovesSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	stageA := testutil.CreateTestStage(t, db, tenantA, "Lead", 0)
	stageB := testutil.CreateTestStage(t, db, tenantB, "Lead", 0)
	dealA := testutil.CreateTestDeal(t, db, tenantA, nil, nil, "a", 1)
	dealB := testutil.CreateTestDeal(t, db, tenantB, nil, nil, "b", 1)

	for i := 0; i < 2; i++ {
		_, err := repo.MoveToStage(ctx, repository.StageMove{TenantID: tenantA, DealID: dealA.ID, ToStageID: stageA.ID, ChangedByID: "u"})
		require.NoError(t, err)
	}
	_, err := repo.MoveToStage(ctx, repository.StageMove{TenantID: tenantB, DealID: dealB.ID, ToStageID: stageB.ID, ChangedByID: "u"})
	require.NoError(t, err)

	counts, err := historyRepo.CountMovesSince(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[tenantA])
	assert.Equal(t, int64(1), counts[tenantB])

	counts, err = historyRepo.CountMovesSince(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestDealRepository_UpdateWithMove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)
	ctx := context.Background()
	tenant := uuid.New()

	lead := testutil.CreateTestStage(t, db, tenant, "Lead", 0)
	won := testutil.CreateTestStage(t, db, tenant, "Ganho", 1)

	t.Run("fields and stage change commit together", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "Site", 100)
		deal.Title = "Site institucional"

		result, err := repo.UpdateWithMove(ctx, deal, &repository.StageMove{TenantID: tenant, DealID: deal.ID, ToStageID: won.ID, ChangedByID: "u1"})
		require.NoError(t, err)
		assert.True(t, result.Moved)

		got, err := repo.GetByID(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Equal(t, "Site institucional", got.Title)
		assert.Equal(t, won.ID, *got.StageID)
	})

	t.Run("failed move rolls back the field edits", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, tenant, &lead.ID, nil, "App", 100)
		deal.Title = "App mobile"
		deal.Value = 900

		// the history insert fails without its table
		require.NoError(t, db.Migrator().DropTable(&domain.DealStageHistory{}))
		t.Cleanup(func() { _ = db.AutoMigrate(&domain.DealStageHistory{}) })

		_, err := repo.UpdateWithMove(ctx, deal, &repository.StageMove{TenantID: tenant, DealID: deal.ID, ToStageID: won.ID, ChangedByID: "u1"})
		require.Error(t, err)

		got, err := repo.GetByID(ctx, tenant, deal.ID)
		require.NoError(t, err)
		assert.Equal(t, "App", got.Title)
		assert.Equal(t, 100.0, got.Value)
		assert.Equal(t, lead.ID, *got.StageID)
	})
}
