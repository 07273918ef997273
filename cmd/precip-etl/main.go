package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/precip-etl/internal/app"
	"github.com/couchcryptid/precip-etl/internal/config"
	"github.com/couchcryptid/precip-etl/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	a := app.New(cfg, logger, metrics)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server when an address is configured.
	if a.Server != nil {
		go func() {
			if err := a.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	out, err := a.Run(ctx)
	if out == nil {
		logger.Error("run failed", "error", err)
		shutdown(cfg, a, logger)
		return 1
	}
	code := 0
	if err != nil {
		logger.Error("run completed with publish errors", "error", err)
		code = 1
	}

	vr := out.Validation
	logger.Info("run summary",
		"run_id", vr.RunID,
		"files", vr.FilesProcessed,
		"lines", vr.LinesProcessed,
		"values", vr.ValuesProcessed,
		"missing_pct", vr.MissingPercentage(),
		"anomalies", len(vr.Errors),
		"output_dir", cfg.OutputDir,
	)

	// Keep serving the summary and metrics until asked to stop.
	if a.Server != nil && ctx.Err() == nil {
		logger.Info("run complete, serving until interrupted", "addr", cfg.HTTPAddr)
		<-ctx.Done()
	}
	shutdown(cfg, a, logger)
	return code
}

func shutdown(cfg *config.Config, a *app.App, logger *slog.Logger) {
	if a.Server == nil {
		return
	}
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
