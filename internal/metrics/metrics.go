package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rateLimitExceeded counts HTTP 429 events from the rate limit middleware.
	// Labels:
	// - endpoint: short name like "auth:reset", "auth:signup"
	// - source:   always "ip" for this service
	rateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mingle",
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429)",
		},
		[]string{"endpoint", "source"},
	)

	// deliveryAttempts counts individual provider send attempts.
	// Labels:
	// - provider: "resend" or "supabase"
	// - outcome:  "success", "transient", "permanent"
	deliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mingle",
			Subsystem: "email",
			Name:      "delivery_attempts_total",
			Help:      "Provider send attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	// deliveryResults counts consolidated orchestrator outcomes.
	// Labels:
	// - kind:   message kind ("welcome", "password_reset", "test")
	// - result: "delivered" or "exhausted"
	deliveryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mingle",
			Subsystem: "email",
			Name:      "delivery_results_total",
			Help:      "Consolidated delivery outcomes per message kind",
		},
		[]string{"kind", "result"},
	)

	// recoveryOutcomes counts terminal states of the recovery flow. The label
	// values are internal only; the HTTP response stays masked regardless.
	recoveryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mingle",
			Subsystem: "recovery",
			Name:      "outcomes_total",
			Help:      "Recovery flow terminal states",
		},
		[]string{"state"},
	)
)

// IncRateLimitExceeded increments the 429 counter.
func IncRateLimitExceeded(endpoint, source string) {
	rateLimitExceeded.WithLabelValues(endpoint, source).Inc()
}

// IncDeliveryAttempt records one provider attempt outcome.
func IncDeliveryAttempt(provider, outcome string) {
	deliveryAttempts.WithLabelValues(provider, outcome).Inc()
}

// IncDeliveryResult records one consolidated orchestrator outcome.
func IncDeliveryResult(kind, result string) {
	deliveryResults.WithLabelValues(kind, result).Inc()
}

// IncRecoveryOutcome records a recovery flow terminal state.
func IncRecoveryOutcome(state string) {
	recoveryOutcomes.WithLabelValues(state).Inc()
}
