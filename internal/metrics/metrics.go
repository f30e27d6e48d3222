package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardmarket",
			Name:      "operations_total",
			Help:      "Total number of market operations by outcome.",
		},
		[]string{"operation", "outcome"}, // outcome: ok or the HTTP status class of the failure
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cardmarket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms ~ 16s
		},
		[]string{"method", "route", "status"},
	)

	InvariantViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cardmarket",
			Name:      "invariant_violations_total",
			Help:      "Total number of units aborted by an internal invariant violation.",
		},
	)
)

// Registry holds the market collectors served on /metrics
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(OperationsTotal, HTTPRequestDuration, InvariantViolationsTotal)
}

// ObserveOperation counts one operation outcome
func ObserveOperation(operation, outcome string) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
