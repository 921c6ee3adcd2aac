package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundledger_mutations_total",
			Help: "Total number of admin mutations by entity, operation and outcome",
		},
		[]string{"entity", "op", "status"}, // status: success, error
	)

	RebalancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundledger_rebalances_total",
			Help: "Total number of ownership rebalances",
		},
		[]string{"mode", "status"},
	)

	LedgerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundledger_ledger_duration_seconds",
			Help:    "Time to compute a ledger or fund summary",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"kind"}, // participant, fund
	)

	CalendarLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundledger_calendar_lookups_total",
			Help: "Trading calendar lookups by where the answer came from",
		},
		[]string{"source"}, // cache, store, fallback
	)
)

// Outcome maps an error to the status label used by the counters above
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordMutation counts one admin mutation
func RecordMutation(entity, op string, err error) {
	MutationsTotal.WithLabelValues(entity, op, Outcome(err)).Inc()
}
