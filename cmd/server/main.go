package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/logging"
	"github.com/JonMunkholm/itemlist/internal/store"
	"github.com/JonMunkholm/itemlist/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logOut io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.Logging.File, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logging.Setup(logOut, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", cfg.Source.Driver,
		"view_ttl", cfg.Views.TTL,
		"max_views", cfg.Views.MaxViews,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	opened, err := store.Open(ctx, cfg.Source)
	if err != nil {
		slog.Error("failed to open item source", "driver", cfg.Source.Driver, "error", err)
		os.Exit(1)
	}
	source := store.NewLimited(opened, cfg.Source.MaxConcurrentLoads, cfg.Source.LoadWait)
	defer source.Close()

	// Probe the source once so a misconfigured driver shows up at startup.
	if items, err := store.Load(ctx, source, cfg.Source.LoadTimeout); err != nil {
		slog.Warn("initial item load failed", "error", err)
	} else {
		slog.Info("item source ready", "driver", cfg.Source.Driver, "items", len(items))
	}

	server := web.NewServer(source, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go server.RunJanitors(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight item loads before the source is closed
		if status := source.Status(); status.Active > 0 {
			slog.Info("waiting for item loads to complete", "active", status.Active)
			if err := source.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("item loads did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
