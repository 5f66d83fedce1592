package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SohamB4746Y/ja-assure-rag/internal/bootstrap"
	"github.com/SohamB4746Y/ja-assure-rag/internal/config"
	"github.com/SohamB4746Y/ja-assure-rag/internal/observability/logging"
	"github.com/SohamB4746Y/ja-assure-rag/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	// Build the index once on startup so a fresh deployment can serve
	// semantic queries without waiting for the first reindex request.
	if err := rebuildOnce(ctx, app, workerMetrics, "startup"); err != nil {
		slog.Error("initial_index_build_failed", "error", err)
		os.Exit(1)
	}

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context, requestID string) error {
		rebuildCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()
		return rebuildOnce(rebuildCtx, app, workerMetrics, requestID)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

func rebuildOnce(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, requestID string) error {
	start := time.Now()
	m.StartReindex()

	snap, err := app.Rebuild.Rebuild(ctx)
	blocks := 0
	if snap != nil {
		blocks = len(snap.Blocks)
	}
	m.FinishReindex("worker", blocks, time.Since(start), err)

	if err != nil {
		slog.Error("reindex_failed", "request_id", requestID, "error", err)
		return err
	}
	slog.Info("reindex_completed",
		"request_id", requestID,
		"records", len(snap.Records),
		"blocks", blocks,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// A lost completion only delays snapshot reloads until the next rebuild,
	// so publish failure does not fail the rebuild itself.
	if err := app.Queue.PublishReindexCompleted(ctx, requestID); err != nil {
		slog.Warn("reindex_completed_publish_failed", "request_id", requestID, "error", err)
	}
	return nil
}
