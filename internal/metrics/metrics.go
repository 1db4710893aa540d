package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_batches_created_total",
		Help: "Total number of pickup batches created.",
	})

	ItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_batch_items_added_total",
		Help: "Total number of item lines appended to batches.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_batch_status_transitions_total",
		Help: "Explicit batch status updates by target status.",
	},
		[]string{"status"},
	)

	BatchKeyCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_batch_key_collisions_total",
		Help: "Generated batch keys that were already taken.",
	})

	BatchKeyFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ewaste_batch_key_fallbacks_total",
		Help: "Batch keys produced by the timestamp fallback.",
	})

	AutofillFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_autofill_fallbacks_total",
		Help: "Auto-fill suggestions that used deterministic defaults, by reason.",
	},
		[]string{"reason"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	EventHandlerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_event_handler_failures_total",
		Help: "In-process event handlers that returned an error or panicked, by event type.",
	},
		[]string{"event_type"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ewaste_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ewaste_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route"},
	)
)
