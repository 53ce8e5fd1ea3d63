// Package metrics holds the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_webhook_events_total",
			Help: "Inbound payment events by outcome",
		},
		[]string{"outcome"},
	)

	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_settlements_total",
			Help: "Settlement attempts by result",
		},
		[]string{"result"},
	)

	// AbsorbedSettlementFailures counts settlement errors that were
	// acknowledged to the provider anyway. This is the operator error
	// channel's alertable signal.
	AbsorbedSettlementFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_absorbed_settlement_failures_total",
			Help: "Settlement failures acknowledged to the provider",
		},
	)

	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_reconciliation_sweeps_total",
			Help: "Reconciliation sweeper runs by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordWebhookEvent(outcome string) {
	webhookEvents.WithLabelValues(outcome).Inc()
}

func RecordSettlement(success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	settlements.WithLabelValues(result).Inc()
}
