package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"todoclient/internal/adapter/http/fakeapi"
	"todoclient/internal/core/domain"
	"todoclient/pkg/config"
	"todoclient/pkg/metrics"
)

// StartFakeServer serves the fake remote collection on cfg.Fake.Addr until
// ctx is cancelled.
func StartFakeServer(ctx context.Context, cfg *config.AppConfig, logger *config.Logger, m *metrics.ServerMetrics, seed ...domain.Todo) error {
	container := NewContainer(logger, m, seed...)

	router := fakeapi.SetupRouter(container.TodoHandler, fakeapi.RouterConfig{
		ServiceName: cfg.Telemetry.ServiceName + "-fake",
		Fake:        cfg.Fake,
		Metrics:     m,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         cfg.Fake.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.InfoWithTrace(ctx, "Fake remote starting",
		zap.String("addr", cfg.Fake.Addr),
		zap.Duration("latency", cfg.Fake.Latency),
		zap.String("environment", cfg.Environment))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithTrace(ctx, "Fake remote failed to start", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	config.LogInfo(ctx, logger, "Fake remote shutting down")
	return srv.Shutdown(shutdownCtx)
}
