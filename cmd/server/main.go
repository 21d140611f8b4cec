package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/pension/internal/config"
	"github.com/JonMunkholm/pension/internal/core"
	"github.com/JonMunkholm/pension/internal/logging"
	"github.com/JonMunkholm/pension/internal/metrics"
	"github.com/JonMunkholm/pension/internal/store/pg"
	"github.com/JonMunkholm/pension/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	// Interrupting the load exits cleanly instead of waiting for a slow download.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := core.Load(ctx, cfg.Dataset.Source, core.Options{
		Encoding:     cfg.Dataset.Encoding,
		FetchTimeout: cfg.Dataset.FetchTimeout,
		FetchRetries: cfg.Dataset.FetchRetries,
		MaxSize:      cfg.Dataset.MaxSize,
	})
	if err != nil {
		slog.Error("failed to load dataset", "error", err, "detail", core.FormatUserError(err))
		os.Exit(1)
	}

	m := metrics.New()
	m.ObserveLoad(reg.Stats())

	if cfg.Database.SnapshotConfigured() {
		writeSnapshot(ctx, cfg, reg)
	}

	server := web.NewServer(reg, m, cfg)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// writeSnapshot copies the registry to PostgreSQL. The registry stays the
// source of truth, so failures are logged and startup continues.
func writeSnapshot(ctx context.Context, cfg *config.Config, reg *core.Registry) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.SnapshotTimeout)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Warn("snapshot skipped: database unavailable", "error", err)
		return
	}
	defer pool.Close()

	store := pg.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Warn("snapshot skipped: schema setup failed", "error", err)
		return
	}
	if _, err := store.WriteSnapshot(ctx, reg); err != nil {
		slog.Warn("snapshot failed", "load_id", reg.Stats().LoadID, "error", err)
	}
}
