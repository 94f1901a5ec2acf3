package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		url     string
		backend Backend
		dsn     string
		wantErr bool
	}{
		{url: "", backend: BackendMemory},
		{url: "memory://", backend: BackendMemory},
		{url: "postgres://u:p@db/tasks", backend: BackendPostgres, dsn: "postgres://u:p@db/tasks"},
		{url: "postgresql://db/tasks?sslmode=disable", backend: BackendPostgres, dsn: "postgresql://db/tasks?sslmode=disable"},
		{url: "sqlite://data/tasks.db", backend: BackendSQLite, dsn: "data/tasks.db"},
		{url: "sqlite:///var/lib/tasks.db", backend: BackendSQLite, dsn: "/var/lib/tasks.db"},
		{url: "file:tasks.db", backend: BackendSQLite, dsn: "tasks.db"},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://root:secret@db/tasks", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			backend, dsn, err := Resolve(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) succeeded", tt.url)
				}
				if strings.Contains(err.Error(), "secret") {
					t.Errorf("error leaks credentials: %v", err)
				}
				return
			}
			if err != nil || backend != tt.backend || dsn != tt.dsn {
				t.Errorf("Resolve(%q) = %q, %q, %v; want %q, %q", tt.url, backend, dsn, err, tt.backend, tt.dsn)
			}
		})
	}
}

func TestOpen_SQLiteAndMemory(t *testing.T) {
	ctx := context.Background()

	s, backend, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "tasks.db"), Options{})
	if err != nil || backend != BackendSQLite {
		t.Fatalf("Open(sqlite) = %q, %v", backend, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	s.Close()

	m, backend, err := Open(ctx, "memory://", Options{})
	if err != nil || backend != BackendMemory || m == nil {
		t.Errorf("Open(memory) = %q, %v", backend, err)
	}
}
