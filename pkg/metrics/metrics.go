package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type ClientMetrics struct {
	remoteCalls        *prometheus.CounterVec
	remoteCallDuration *prometheus.HistogramVec
	notifications      *prometheus.CounterVec
	batchSize          *prometheus.HistogramVec
	batchFailures      *prometheus.CounterVec
	inFlight           prometheus.Gauge
}

func NewClientMetrics(registry prometheus.Registerer) *ClientMetrics {
	metrics := &ClientMetrics{
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_remote_calls_total",
				Help: "Total number of remote collection calls",
			},
			[]string{"operation", "outcome"},
		),
		remoteCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_remote_call_duration_seconds",
				Help:    "Duration of remote collection calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_notifications_total",
				Help: "Total number of error notifications shown",
			},
			[]string{"kind"},
		),
		batchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_batch_size",
				Help:    "Number of remote calls dispatched per batch operation",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"operation"},
		),
		batchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_batch_failures_total",
				Help: "Total number of failed calls inside batch operations",
			},
			[]string{"operation"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "todo_remote_calls_in_flight",
				Help: "Number of remote calls currently in flight",
			},
		),
	}

	registry.MustRegister(
		metrics.remoteCalls,
		metrics.remoteCallDuration,
		metrics.notifications,
		metrics.batchSize,
		metrics.batchFailures,
		metrics.inFlight,
	)

	return metrics
}

func (m *ClientMetrics) RecordRemoteCall(ctx context.Context, operation, outcome string, duration time.Duration) {
	m.remoteCalls.WithLabelValues(operation, outcome).Inc()
	m.remoteCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *ClientMetrics) IncrementInFlight(ctx context.Context) {
	m.inFlight.Inc()
}

func (m *ClientMetrics) DecrementInFlight(ctx context.Context) {
	m.inFlight.Dec()
}

func (m *ClientMetrics) RecordNotification(ctx context.Context, kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *ClientMetrics) RecordBatch(ctx context.Context, operation string, size, failed int) {
	m.batchSize.WithLabelValues(operation).Observe(float64(size))
	if failed > 0 {
		m.batchFailures.WithLabelValues(operation).Add(float64(failed))
	}
}

// ServerMetrics instruments the development remote server.
type ServerMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	injectedFaults  *prometheus.CounterVec
}

func NewServerMetrics(registry prometheus.Registerer) *ServerMetrics {
	metrics := &ServerMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_fake_http_requests_total",
				Help: "Total number of requests served by the fake remote",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_fake_http_request_duration_seconds",
				Help:    "Duration of requests served by the fake remote",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		injectedFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_fake_injected_faults_total",
				Help: "Total number of failures injected by the fake remote",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(metrics.requests, metrics.requestDuration, metrics.injectedFaults)

	return metrics
}

func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, duration time.Duration) {
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordFault(ctx context.Context, operation string) {
	m.injectedFaults.WithLabelValues(operation).Inc()
}
