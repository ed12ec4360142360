package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ShirinGhmm/Thickness-files/internal/audit"
	"github.com/ShirinGhmm/Thickness-files/internal/config"
	"github.com/ShirinGhmm/Thickness-files/internal/core"
	"github.com/ShirinGhmm/Thickness-files/internal/logging"
	"github.com/ShirinGhmm/Thickness-files/internal/store"
	"github.com/ShirinGhmm/Thickness-files/internal/web"
	"github.com/joho/godotenv"
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

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"audit_dir", cfg.Audit.Dir,
		"retain_on_failure", cfg.Staging.RetainOnFailure,
		"database_enabled", cfg.Database.URL != "",
	)

	// Ensure the audit log directory exists before any request arrives
	auditDir, err := audit.NewDir(cfg.Audit.Dir)
	if err != nil {
		slog.Error("failed to create audit log directory", "error", err)
		os.Exit(1)
	}

	// Optional aggregate persistence
	ctx := context.Background()
	var sink core.AggregateSink
	if cfg.Database.URL != "" {
		aggregates, err := store.New(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer aggregates.Close()
		sink = aggregates

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
	} else {
		slog.Info("no database configured, aggregate persistence disabled")
	}

	service := core.NewService(cfg, auditDir, sink)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
