package prometheus

import (
	"time"

	"alumglass-backend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Admin authentication metrics
	LoginAttemptsCounter prometheus.Counter
	LoginSuccessCounter  prometheus.Counter
	LoginErrorsCounter   prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Content operation metrics
	ServiceOperationsCounter prometheus.CounterVec
	SegmentOperationsCounter prometheus.CounterVec
	ProjectOperationsCounter prometheus.CounterVec

	// Image upload metrics
	UploadCounter prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Admin authentication metrics
	LoginAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
	)

	LoginSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_success_total",
			Help: "Total number of successful admin logins",
		},
	)

	LoginErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_errors_total",
			Help: "Total number of failed admin logins",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Service metrics
	ServiceOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_service_operations_total",
			Help: "Total number of service operations",
		},
		[]string{"operation"},
	)

	// Segment metrics
	SegmentOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_segment_operations_total",
			Help: "Total number of segment operations",
		},
		[]string{"operation"},
	)

	// Project metrics
	ProjectOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_project_operations_total",
			Help: "Total number of project operations",
		},
		[]string{"operation"},
	)

	// Image upload metrics
	UploadCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_image_uploads_total",
			Help: "Total number of image uploads",
		},
		[]string{"result"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordServiceOperation increments the counter for service operations
func RecordServiceOperation(operation string) {
	ServiceOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordSegmentOperation increments the counter for segment operations
func RecordSegmentOperation(operation string) {
	SegmentOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordProjectOperation increments the counter for project operations
func RecordProjectOperation(operation string) {
	ProjectOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordLoginError increments the failed-login counter for a reason
func RecordLoginError(reason string) {
	LoginErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordUpload increments the upload counter with the outcome
func RecordUpload(result string) {
	UploadCounter.WithLabelValues(result).Inc()
}
