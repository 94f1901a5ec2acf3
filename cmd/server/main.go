package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/taskdesk/internal/application"
	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/logging"
	"github.com/JonMunkholm/taskdesk/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	app, err := application.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}
	defer app.Store.Close()

	for _, info := range app.Service.ListImports() {
		slog.Debug("import flow", "kind", info.Kind, "columns", len(info.Columns))
	}

	server := web.NewServer(app.Service, cfg)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go app.Service.StartHistoryScheduler(jobCtx, application.HistoryConfig(cfg))

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		status := app.Service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := app.Service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "backend", app.Backend, "imports", core.ImportCount())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
