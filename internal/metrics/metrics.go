// Package metrics exposes Prometheus collectors for the submission pipeline.
//
// Collectors register on the default registry and are served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeLimitReached = "limit_reached"
	OutcomeError        = "error"
)

// Recommendation tiers.
const (
	TierExact     = "exact"
	TierTagType   = "tag_type"
	TierPriceBand = "price_band"
	TierFallback  = "fallback"
	TierEmpty     = "empty"
)

var (
	// SubmissionsTotal counts quiz submissions by outcome.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmatch_submissions_total",
			Help: "Total number of quiz submissions by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationTierTotal counts which resolver tier served a submission.
	RecommendationTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmatch_recommendation_tier_total",
			Help: "Total number of recommendation resolutions by serving tier",
		},
		[]string{"tier"},
	)

	// CatalogQueryFailuresTotal counts catalog calls that errored, timed out or were short-circuited.
	CatalogQueryFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmatch_catalog_query_failures_total",
			Help: "Total number of failed catalog queries by tier",
		},
		[]string{"tier"},
	)

	// SideEffectFailuresTotal counts best-effort work that failed after commit.
	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmatch_side_effect_failures_total",
			Help: "Total number of failed post-commit side effects by kind",
		},
		[]string{"kind"},
	)

	// RateLimitedTotal counts requests rejected by the limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmatch_rate_limited_total",
			Help: "Total number of rate limited requests by endpoint",
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quizmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// HTTPRequestDuration tracks request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizmatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordRecommendationTier(tier string) {
	RecommendationTierTotal.WithLabelValues(tier).Inc()
}

func RecordCatalogFailure(tier string) {
	CatalogQueryFailuresTotal.WithLabelValues(tier).Inc()
}

func RecordSideEffectFailure(kind string) {
	SideEffectFailuresTotal.WithLabelValues(kind).Inc()
}

func RecordRateLimited(endpoint string) {
	RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
