package port

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry lets the core emit spans and metrics without knowing the backend.
type Telemetry interface {
	StartRemoteSpan(ctx context.Context, operation string, todoID int, attrs []attribute.KeyValue) (context.Context, trace.Span)

	RecordRemoteCall(ctx context.Context, operation string, duration time.Duration, err error)
	RecordNotification(ctx context.Context, kind string)
	RecordBatch(ctx context.Context, operation string, size int, failed int)

	RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{})
}
