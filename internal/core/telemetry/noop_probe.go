package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"todoclient/internal/core/port"
)

// NoOpProbe implements Telemetry with no operations; used by tests and when telemetry is disabled.
type NoOpProbe struct{}

func NewNoOpProbe() port.Telemetry {
	return &NoOpProbe{}
}

func (p *NoOpProbe) StartRemoteSpan(ctx context.Context, operation string, todoID int, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer("noop").Start(ctx, operation)
}

func (p *NoOpProbe) RecordRemoteCall(ctx context.Context, operation string, duration time.Duration, err error) {
}

func (p *NoOpProbe) RecordNotification(ctx context.Context, kind string) {
}

func (p *NoOpProbe) RecordBatch(ctx context.Context, operation string, size int, failed int) {
}

func (p *NoOpProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
}

// RemoteOperation measures one remote call from start to End.
type RemoteOperation struct {
	probe     port.Telemetry
	ctx       context.Context
	span      trace.Span
	startTime time.Time
	operation string
}

// StartOperation opens a span for the call and starts its timer. The returned
// context carries the span and must be passed to the call.
func StartOperation(ctx context.Context, probe port.Telemetry, operation string, todoID int) (context.Context, *RemoteOperation) {
	if probe == nil {
		probe = NewNoOpProbe()
	}

	ctx, span := probe.StartRemoteSpan(ctx, operation, todoID, nil)

	return ctx, &RemoteOperation{
		probe:     probe,
		ctx:       ctx,
		span:      span,
		startTime: time.Now(),
		operation: operation,
	}
}

// End records the outcome and closes the span.
func (op *RemoteOperation) End(err error) {
	op.probe.RecordRemoteCall(op.ctx, op.operation, time.Since(op.startTime), err)
	op.span.End()
}
