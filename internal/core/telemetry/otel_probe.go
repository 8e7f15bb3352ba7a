package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todoclient/internal/core/port"
	"todoclient/pkg/config"
	"todoclient/pkg/metrics"
	"todoclient/pkg/tracing"
)

// OTELProbe implements Telemetry with OpenTelemetry spans and Prometheus metrics.
type OTELProbe struct {
	logger  *config.Logger
	metrics *metrics.ClientMetrics
	userID  int
}

func NewOTELProbe(logger *config.Logger, m *metrics.ClientMetrics, userID int) port.Telemetry {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &OTELProbe{
		logger:  logger,
		metrics: m,
		userID:  userID,
	}
}

func (p *OTELProbe) StartRemoteSpan(ctx context.Context, operation string, todoID int, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("remote.todos.%s", operation)

	standardAttrs := []attribute.KeyValue{
		attribute.String("remote.operation", operation),
		attribute.Int("user.id", p.userID),
		attribute.String("component", "remote"),
	}
	if todoID > 0 {
		standardAttrs = append(standardAttrs, attribute.Int("todo.id", todoID))
	}
	standardAttrs = append(standardAttrs, attrs...)

	ctx, span := tracing.CreateChildSpan(ctx, spanName, standardAttrs)
	if p.metrics != nil {
		p.metrics.IncrementInFlight(ctx)
	}

	return ctx, span
}

func (p *OTELProbe) RecordRemoteCall(ctx context.Context, operation string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
		tracing.AddSpanError(span, err)
		p.logger.ErrorWithTrace(ctx, "Remote call failed",
			zap.String("operation", operation),
			zap.Int("user_id", p.userID),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		span.SetStatus(codes.Ok, "")
		p.logger.DebugWithTrace(ctx, "Remote call completed",
			zap.String("operation", operation),
			zap.Duration("duration", duration))
	}

	if p.metrics != nil {
		p.metrics.DecrementInFlight(ctx)
		p.metrics.RecordRemoteCall(ctx, operation, outcome, duration)
	}
}

func (p *OTELProbe) RecordNotification(ctx context.Context, kind string) {
	if p.metrics != nil {
		p.metrics.RecordNotification(ctx, kind)
	}
}

func (p *OTELProbe) RecordBatch(ctx context.Context, operation string, size int, failed int) {
	tracing.AddSpanEvent(trace.SpanFromContext(ctx), "batch.settled", []attribute.KeyValue{
		attribute.String("batch.operation", operation),
		attribute.Int("batch.size", size),
		attribute.Int("batch.failed", failed),
	})

	p.logger.InfoWithTrace(ctx, "Batch settled",
		zap.String("operation", operation),
		zap.Int("size", size),
		zap.Int("failed", failed))

	if p.metrics != nil {
		p.metrics.RecordBatch(ctx, operation, size, failed)
	}
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}
	if len(metadata) > 0 {
		fields = append(fields, zap.Any("metadata", metadata))
	}

	p.logger.ErrorWithTrace(ctx, "Operation error recorded", fields...)
}
