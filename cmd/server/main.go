package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/LinkSort/internal/config"
	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/decode"
	"github.com/JonMunkholm/LinkSort/internal/history"
	"github.com/JonMunkholm/LinkSort/internal/logging"
	"github.com/JonMunkholm/LinkSort/internal/web"
	"github.com/joho/godotenv"
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

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"strict_hosts", cfg.Classify.StrictHosts,
		"history_enabled", cfg.HistoryEnabled(),
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	// History is optional; without DATABASE_URL reports are only kept in memory.
	var (
		hist     web.HistoryStore
		recorder core.Recorder
	)
	if cfg.HistoryEnabled() {
		store, err := history.Open(ctx, history.Config{
			URL:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			slog.Error("failed to open history store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		hist, recorder = store, store
		slog.Info("history store connected")
	}

	ingestor := core.NewIngestor(
		decode.Spreadsheet{UnzipSizeLimit: cfg.Upload.MaxUnzipSize},
		decode.Document{MaxXMLSize: cfg.Upload.MaxUnzipSize},
	)
	service := core.NewService(core.ServiceConfig{
		Ingestor: ingestor,
		Classifier: core.NewClassifier(
			core.WithStrictHosts(cfg.Classify.StrictHosts),
			core.WithClassifierLogger(logger),
		),
		Limiter:  core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		Recorder: recorder,
		Timeout:  cfg.Upload.Timeout,
	})

	server := web.NewServer(service, cfg, hist)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	go service.StartSessionSweeper(jobCtx, core.SweepConfig{
		TTL:      cfg.Session.TTL,
		Interval: cfg.Session.SweepInterval,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.UploadLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
