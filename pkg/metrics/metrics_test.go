package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClientMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewClientMetrics(registry)
	ctx := context.Background()

	m.RecordRemoteCall(ctx, "update", OutcomeSuccess, 10*time.Millisecond)
	m.RecordRemoteCall(ctx, "update", OutcomeFailure, 20*time.Millisecond)
	m.RecordRemoteCall(ctx, "update", OutcomeFailure, 5*time.Millisecond)
	m.RecordNotification(ctx, "delete")
	m.RecordBatch(ctx, "clear_completed", 3, 1)
	m.RecordBatch(ctx, "clear_completed", 2, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.remoteCalls.WithLabelValues("update", OutcomeSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.remoteCalls.WithLabelValues("update", OutcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("delete")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.batchFailures.WithLabelValues("clear_completed")))

	m.IncrementInFlight(ctx)
	m.IncrementInFlight(ctx)
	m.DecrementInFlight(ctx)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight))
}

func TestServerMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewServerMetrics(registry)
	ctx := context.Background()

	m.RecordRequest(ctx, "GET", "/todos", "200", time.Millisecond)
	m.RecordRequest(ctx, "GET", "/todos", "200", time.Millisecond)
	m.RecordFault(ctx, "delete")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/todos", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.injectedFaults.WithLabelValues("delete")))
}
