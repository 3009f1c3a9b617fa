package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gobank/internal/domain"
)

const namespace = "gobank"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersTotal   *prometheus.CounterVec
	TransferDuration *prometheus.HistogramVec

	// Approval gateway metrics
	Approvals        *prometheus.CounterVec
	ApprovalDuration prometheus.Histogram

	// Account metrics
	AccountOperations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total transfers by final state and rejection reason",
			},
			[]string{"state", "reason"},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Duration of transfer operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"state"},
		),

		Approvals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_total",
				Help:      "Approval gateway answers",
			},
			[]string{"result"},
		),
		ApprovalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "approval_duration_seconds",
			Help:      "Approval gateway round trip time",
			Buckets:   prometheus.DefBuckets,
		}),

		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_operations_total",
				Help:      "Total account operations by type",
			},
			[]string{"operation", "ok"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total requests rejected by the rate limiter",
		}),
	}
}

// RecordTransfer implements usecase.MetricsRecorder.
func (m *Metrics) RecordTransfer(state domain.TransferState, reason string, elapsed time.Duration) {
	m.TransfersTotal.WithLabelValues(string(state), reason).Inc()
	m.TransferDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
}

// RecordApproval implements usecase.MetricsRecorder.
func (m *Metrics) RecordApproval(approved bool, elapsed time.Duration) {
	result := "denied"
	if approved {
		result = "approved"
	}

	m.Approvals.WithLabelValues(result).Inc()
	m.ApprovalDuration.Observe(elapsed.Seconds())
}

// RecordAccountOperation implements usecase.MetricsRecorder.
func (m *Metrics) RecordAccountOperation(op string, ok bool) {
	m.AccountOperations.WithLabelValues(op, strconv.FormatBool(ok)).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
