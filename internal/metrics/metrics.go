// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wainbox_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	HTTPRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_http_rejected_total",
			Help: "Requests answered by middleware before reaching a handler",
		},
		[]string{"reason"}, // "rate_limit", "timeout", "panic" or "unauthorized"
	)

	// Business metrics
	MessagesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_messages_created_total",
			Help: "Message records created",
		},
		[]string{"source"}, // "webhook", "manual" or "ingest"
	)

	StatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_status_updates_total",
			Help: "Status updates by outcome",
		},
		[]string{"outcome"}, // "primary_id", "fallback_id", "no_match" or "error"
	)

	IngestFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_ingest_files_total",
			Help: "Payload files processed by the ingestion job",
		},
		[]string{"result"}, // "processed", "skipped", "failed" or "retry"
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wainbox_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wainbox_chat_cache_lookups_total",
			Help: "Chat list cache lookups",
		},
		[]string{"result"}, // "hit", "miss" or "error"
	)
)

const (
	SourceWebhook = "webhook"
	SourceManual  = "manual"
	SourceIngest  = "ingest"
)
