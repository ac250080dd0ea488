// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gestor"

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Pipeline activity
	DealMovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_moves_total",
		Help:      "Deals moved between pipeline stages",
	})

	FollowUpPromptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_up_prompts_total",
		Help:      "Follow-up prompts emitted after a deal entered a proposal stage",
	})

	StageReordersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_reorders_total",
		Help:      "Successful stage reorders",
	})

	// Pipeline snapshot, refreshed by the pipeline metrics job
	PipelineDeals = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pipeline_active_deals",
		Help:      "Active deals per tenant and stage",
	}, []string{"tenant", "stage"})

	PipelineValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pipeline_active_value",
		Help:      "Summed value of active deals per tenant and stage",
	}, []string{"tenant", "stage"})

	DealMovesLastDay = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "deal_moves_last_24h",
		Help:      "Stage transitions recorded in the last 24 hours per tenant",
	}, []string{"tenant"})

	// Postal lookups
	PostalLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "postal_lookups_total",
		Help:      "Postal code lookups by outcome",
	}, []string{"kind", "outcome"})

	// Background jobs
	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job executions by outcome",
	}, []string{"job", "outcome"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of scheduled job executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
