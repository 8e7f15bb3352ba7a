package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"todoclient/internal/core/port"
	"todoclient/internal/core/telemetry"
	"todoclient/pkg/config"
	"todoclient/pkg/metrics"
)

// Container owns the tracer and meter providers, the Prometheus registry and
// the optional /metrics listener.
type Container struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	PrometheusRegistry *prometheus.Registry
	MetricsServer      *http.Server
	ClientMetrics      *metrics.ClientMetrics
	ServerMetrics      *metrics.ServerMetrics

	logger *config.Logger
}

// NewContainer sets the global providers. Spans are exported over OTLP gRPC
// only when an endpoint is configured; the metrics listener starts only when
// an address is configured.
func NewContainer(ctx context.Context, cfg config.TelemetryConfig, environment string, logger *config.Logger) (*Container, error) {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if cfg.OTLPEndpoint != "" {
		otlpExporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		traceOpts = append(traceOpts, sdktrace.WithBatcher(otlpExporter,
			sdktrace.WithBatchTimeout(1*time.Second),
		))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, err
	}

	c := &Container{
		TracerProvider:     tracerProvider,
		MeterProvider:      meterProvider,
		PrometheusRegistry: registry,
		ClientMetrics:      metrics.NewClientMetrics(registry),
		ServerMetrics:      metrics.NewServerMetrics(registry),
		logger:             logger,
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		c.MetricsServer = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}

		go func() {
			if err := c.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorWithTrace(ctx, "Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	return c, nil
}

func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	errs = append(errs, c.TracerProvider.Shutdown(ctx))
	errs = append(errs, c.MeterProvider.Shutdown(ctx))

	if c.MetricsServer != nil {
		errs = append(errs, c.MetricsServer.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

// NewTelemetryProbe returns the probe the session reports remote calls to.
func (c *Container) NewTelemetryProbe(userID int) port.Telemetry {
	return telemetry.NewOTELProbe(c.logger, c.ClientMetrics, userID)
}
