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

	httpadapter "github.com/SohamB4746Y/ja-assure-rag/internal/adapters/http"
	"github.com/SohamB4746Y/ja-assure-rag/internal/bootstrap"
	"github.com/SohamB4746Y/ja-assure-rag/internal/config"
	"github.com/SohamB4746Y/ja-assure-rag/internal/observability/logging"
	"github.com/SohamB4746Y/ja-assure-rag/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// The resolver refuses every query until the corpus is loaded, so a load
	// failure here is fatal rather than a degraded start.
	if err := app.LoadSnapshot(ctx); err != nil {
		slog.Error("corpus_load_failed", "error", err)
		os.Exit(1)
	}

	// Reload the snapshot whenever the worker finishes a rebuild, so answers
	// keep citing the blocks the vector index actually holds.
	go func() {
		err := app.Queue.SubscribeReindexCompleted(ctx, func(handlerCtx context.Context, requestID string) error {
			if err := app.LoadSnapshot(handlerCtx); err != nil {
				return err
			}
			slog.Info("snapshot_reloaded", "request_id", requestID)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("reindex_completed_subscribe_failed", "error", err)
		}
	}()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.Engine,
		app.Queue,
		serverMetrics,
		float64(cfg.APIRateLimitRPS),
		cfg.APIRateLimitBurst,
		cfg.APIMaxInFlight,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("api_listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api_shutdown_incomplete", "error", err)
	}
}
