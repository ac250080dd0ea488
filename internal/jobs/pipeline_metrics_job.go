package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/gestorpro/gestor-api/internal/metrics"
	"github.com/gestorpro/gestor-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineMetricsJobName is the scheduler name of the pipeline snapshot job
const PipelineMetricsJobName = "pipeline_metrics"

// unstagedLabel is the stage label for active deals without a stage
const unstagedLabel = "none"

// StageTotalsSource aggregates active deals per tenant and stage
type StageTotalsSource interface {
	GetStageTotals(ctx context.Context) ([]repository.StageTotals, error)
}

// MoveCounter counts stage transitions per tenant since a point in time
type MoveCounter interface {
	CountMovesSince(ctx context.Context, since time.Time) (map[uuid.UUID]int64, error)
}

// PipelineMetricsJob refreshes the pipeline gauges exported on /metrics
type PipelineMetricsJob struct {
	totals  StageTotalsSource
	moves   MoveCounter
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewPipelineMetricsJob creates the job. timeout bounds a single run.
func NewPipelineMetricsJob(totals StageTotalsSource, moves MoveCounter, logger *zap.Logger, timeout time.Duration) *PipelineMetricsJob {
	return &PipelineMetricsJob{
		totals:  totals,
		moves:   moves,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Run replaces the gauge values with a fresh snapshot. Series of stages or
// tenants that no longer have active deals are dropped.
func (j *PipelineMetricsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	totals, err := j.totals.GetStageTotals(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate stage totals: %w", err)
	}
	moves, err := j.moves.CountMovesSince(ctx, j.now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to count deal moves: %w", err)
	}

	metrics.PipelineDeals.Reset()
	metrics.PipelineValue.Reset()
	for _, t := range totals {
		stage := unstagedLabel
		if t.StageID != nil {
			stage = t.StageID.String()
		}
		tenant := t.TenantID.String()
		metrics.PipelineDeals.WithLabelValues(tenant, stage).Set(float64(t.Count))
		metrics.PipelineValue.WithLabelValues(tenant, stage).Set(t.TotalValue)
	}

	metrics.DealMovesLastDay.Reset()
	for tenantID, count := range moves {
		metrics.DealMovesLastDay.WithLabelValues(tenantID.String()).Set(float64(count))
	}

	j.logger.Debug("pipeline metrics refreshed",
		zap.Int("series", len(totals)),
		zap.Int("tenants_with_moves", len(moves)))
	return nil
}
