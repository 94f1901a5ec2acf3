// Package application assembles the store and import service from config and
// provides the interactive terminal menu used by taskimport.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/core"
	_ "github.com/JonMunkholm/taskdesk/internal/core/imports"
	"github.com/JonMunkholm/taskdesk/internal/store"
	"github.com/JonMunkholm/taskdesk/internal/store/postgres"
)

// App owns the opened store and the service built on it.
type App struct {
	Service *core.Service
	Store   core.Store
	Backend store.Backend
}

// New opens the configured store, builds the service and applies the seed
// file when one is configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, backend, err := store.Open(ctx, cfg.Database.URL, store.Options{
		Pool: postgres.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		},
	})
	if err != nil {
		return nil, err
	}
	slog.Info("store opened", "backend", backend)

	svc := core.NewService(st, ServiceOptions(cfg))
	slog.Info("imports registered", "count", core.ImportCount())

	app := &App{Service: svc, Store: st, Backend: backend}
	if cfg.Seed.File != "" {
		if err := app.Seed(ctx, cfg.Seed.File); err != nil {
			st.Close()
			return nil, err
		}
	}
	return app, nil
}

// ServiceOptions maps configuration onto core.ServiceOptions.
func ServiceOptions(cfg *config.Config) core.ServiceOptions {
	return core.ServiceOptions{
		MaxConcurrentImports: cfg.Upload.MaxConcurrent,
		ImportWait:           cfg.Upload.MaxWaitTime,
		ImportTimeout:        cfg.Upload.Timeout,
		MaxFileSize:          cfg.Upload.MaxFileSize,
		Policies: map[core.ImportKind]core.MatchPolicy{
			core.KindTasks:     core.ParseMatchPolicy(strings.ToLower(cfg.Import.TaskHeaderPolicy)),
			core.KindAssignees: core.ParseMatchPolicy(strings.ToLower(cfg.Import.AssigneeHeaderPolicy)),
		},
		FillCaptainFromDirectory: cfg.Import.FillCaptainFromDirectory,
	}
}

// HistoryConfig maps configuration onto the retention scheduler settings.
func HistoryConfig(cfg *config.Config) core.HistoryConfig {
	return core.HistoryConfig{
		RetentionDays: cfg.History.RetentionDays,
		CheckInterval: cfg.History.CheckInterval,
	}
}

// Seed loads a YAML seed file and applies it.
func (a *App) Seed(ctx context.Context, path string) error {
	seed, err := core.LoadSeedFile(path)
	if err != nil {
		return err
	}
	res, err := a.Service.ApplySeed(ctx, seed)
	if err != nil {
		return fmt.Errorf("apply seed %s: %w", path, err)
	}
	slog.Info("seed applied",
		"file", path,
		"created", res.Created,
		"existing", res.Existing,
		"assignees", res.Assignees,
	)
	return nil
}

// Close waits up to timeout for in-flight imports, then closes the store.
func (a *App) Close(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if active := a.Service.Limiter().ActiveCount(); active > 0 {
		slog.Info("waiting for imports to complete", "active", active)
		if err := a.Service.Limiter().WaitForDrain(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}
	a.Store.Close()
}
