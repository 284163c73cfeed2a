package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyq-ai/pyq-assistant/internal/platform/config"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
	}{
		{"json debug", config.LogConfig{Level: "debug", Format: "json"}},
		{"text info", config.LogConfig{Level: "info", Format: "text"}},
		{"bad level falls back to info", config.LogConfig{Level: "shout", Format: "json"}},
	}

	prev := slog.Default()
	defer slog.SetDefault(prev)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.cfg)
			if !slog.Default().Enabled(context.Background(), slog.LevelInfo) {
				t.Error("info level should be enabled")
			}
		})
	}
}

// TestBuildServerMemoryFallback exercises the wiring path where neither
// Postgres nor Redis is reachable: the server must come up on in-memory
// stores and serve traffic.
func TestBuildServerMemoryFallback(t *testing.T) {
	dir := t.TempDir()
	exam := `id: gate-cs
name: GATE Computer Science
subjects:
  - name: Algorithms
    weightage: 100
`
	if err := os.WriteFile(filepath.Join(dir, "gate-cs.yaml"), []byte(exam), 0o644); err != nil {
		t.Fatalf("write exam yaml: %v", err)
	}

	// Unparseable URLs make both connections fail fast.
	t.Setenv("PYQ_DATABASE_URL", "://bad")
	t.Setenv("PYQ_CACHE_URL", "://bad")
	t.Setenv("PYQ_CATALOG_PATH", dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	srv, cleanup, err := buildServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/exams")
	if err != nil {
		t.Fatalf("list exams: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", resp2.StatusCode)
	}
}

// With PYQ_DATABASE_REQUIRED set, an unreachable database is fatal instead
// of triggering the in-memory fallback.
func TestBuildServerDatabaseRequired(t *testing.T) {
	t.Setenv("PYQ_DATABASE_URL", "://bad")
	t.Setenv("PYQ_DATABASE_REQUIRED", "true")
	t.Setenv("PYQ_CACHE_URL", "://bad")
	t.Setenv("PYQ_CATALOG_PATH", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if _, _, err := buildServer(context.Background(), cfg); err == nil {
		t.Fatal("buildServer() should fail when the required database is unreachable")
	}
}
