// Package metrics exposes Prometheus collectors for the recipe service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipes_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Generation runs
	GenerationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_generation_runs_total",
			Help: "Total number of bulk generation runs by source and result",
		},
		[]string{"source", "result"}, // source: delegated, local-fallback
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipes_generation_duration_seconds",
			Help:    "Duration of bulk generation runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"source"},
	)

	RecipesInSnapshot = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipes_snapshot_recipes",
			Help: "Number of recipes in the last persisted snapshot",
		},
	)

	PipelineWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_pipeline_warnings_total",
			Help: "Non-fatal pipeline warnings by stage",
		},
		[]string{"stage"},
	)

	OnDemandTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_on_demand_total",
			Help: "On-demand single recipe generations by result",
		},
		[]string{"result"},
	)

	// Upstream
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_upstream_requests_total",
			Help: "Upstream HTTP calls by upstream and result",
		},
		[]string{"upstream", "result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipes_upstream_request_duration_seconds",
			Help:    "Upstream HTTP call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// Prompt cache
	PromptCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_prompt_cache_hits_total",
			Help: "Total number of prompt cache hits",
		},
	)

	PromptCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipes_prompt_cache_misses_total",
			Help: "Total number of prompt cache misses",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipes_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipes_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordGenerationRun records one bulk generation attempt
func RecordGenerationRun(source string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	GenerationRunsTotal.WithLabelValues(source, result).Inc()
	GenerationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordPipelineWarning counts a non-fatal warning for a stage
func RecordPipelineWarning(stage string) {
	PipelineWarningsTotal.WithLabelValues(stage).Inc()
}

// RecordSnapshotSize sets the number of recipes in the last snapshot
func RecordSnapshotSize(n int) {
	RecipesInSnapshot.Set(float64(n))
}

// RecordOnDemand counts an on-demand generation
func RecordOnDemand(err error) {
	if err != nil {
		OnDemandTotal.WithLabelValues("error").Inc()
		return
	}
	OnDemandTotal.WithLabelValues("success").Inc()
}

// RecordUpstreamCall records an upstream HTTP call
func RecordUpstreamCall(upstream string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(upstream, result).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordPromptCache records a prompt cache lookup
func RecordPromptCache(hit bool) {
	if hit {
		PromptCacheHits.Inc()
		return
	}
	PromptCacheMisses.Inc()
}
