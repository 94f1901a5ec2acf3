// Package store opens the core.Store backend named by a database URL.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/store/memory"
	"github.com/JonMunkholm/taskdesk/internal/store/postgres"
	"github.com/JonMunkholm/taskdesk/internal/store/sqlite"
)

// Backend identifies a storage implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendMemory   Backend = "memory"
)

// Options carries backend-specific tuning.
type Options struct {
	Pool postgres.PoolOptions
}

// Resolve maps a URL to its backend and the DSN that backend expects.
//
//	postgres://... or postgresql://...  -> PostgreSQL, URL unchanged
//	sqlite://path or file:path          -> SQLite file at path
//	memory:// or ""                     -> in-process store
func Resolve(url string) (Backend, string, error) {
	switch {
	case url == "", url == "memory://", url == "memory":
		return BackendMemory, "", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL %q has no path", url)
		}
		return BackendSQLite, path, nil
	case strings.HasPrefix(url, "file:"):
		return BackendSQLite, strings.TrimPrefix(url, "file:"), nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme in %q", redactURL(url))
	}
}

// Open resolves url and opens the matching backend.
func Open(ctx context.Context, url string, opts Options) (core.Store, Backend, error) {
	backend, dsn, err := Resolve(url)
	if err != nil {
		return nil, "", err
	}

	switch backend {
	case BackendPostgres:
		s, err := postgres.Open(ctx, dsn, opts.Pool)
		if err != nil {
			return nil, backend, fmt.Errorf("open postgres: %w", err)
		}
		return s, backend, nil
	case BackendSQLite:
		s, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, backend, fmt.Errorf("open sqlite %s: %w", dsn, err)
		}
		return s, backend, nil
	default:
		return memory.New(), BackendMemory, nil
	}
}

// redactURL drops everything after the scheme so credentials never reach
// logs or error messages.
func redactURL(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i] + "://..."
	}
	if i := strings.Index(url, ":"); i >= 0 {
		return url[:i] + ":..."
	}
	return "..."
}
