// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the cast service and its connection pool.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhuss/castservice/pkg/storage"
)

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cast_service_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cast_service_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StorageErrorsTotal counts storage failures by error kind
	// (configuration, connectivity, pool_exhausted, other).
	StorageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cast_service_storage_errors_total",
			Help: "Storage errors by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StorageErrorsTotal,
	)
}

// RecordStorageError counts err under its storage error kind. Nil errors
// are ignored.
func RecordStorageError(err error) {
	if err == nil {
		return
	}
	StorageErrorsTotal.WithLabelValues(storage.Kind(err)).Inc()
}
