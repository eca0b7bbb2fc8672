package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewAppFlagOverrides(t *testing.T) {
	workspace(t)
	t.Setenv("CROSSWALK_BASE_URI", "https://env.example/")

	app, err := NewApp(&globalOptions{baseURI: "https://flag.example/", natsURL: "nats://localhost:4333"}, io.Discard)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	defer app.Close()

	if app.cfg.BaseURI != "https://flag.example/" {
		t.Errorf("BaseURI = %q, want the flag value", app.cfg.BaseURI)
	}
	if app.cfg.NATS.URL != "nats://localhost:4333" {
		t.Errorf("NATS.URL = %q, want the flag value", app.cfg.NATS.URL)
	}
	if app.engine.Config() != app.cfg {
		t.Error("engine does not use the app config")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		logger := newLogger(tt.level, io.Discard)
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("%s: level %v disabled", tt.level, tt.want)
		}
		if logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("%s: level below %v enabled", tt.level, tt.want)
		}
	}
}

func TestWriteFileKeepsPreviousOutputOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codemeta.jsonld")
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := writeFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("writeFile error = %v, want %v", err, boom)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Errorf("output = %q, want the previous content", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestAppOpenStoreEmbedded(t *testing.T) {
	workspace(t)

	app, err := NewApp(&globalOptions{logLevel: "error"}, io.Discard)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	app.cfg.NATS.StoreDir = t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := app.OpenStore(ctx)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	again, err := app.OpenStore(ctx)
	if err != nil || again != store {
		t.Error("OpenStore should reuse the open store")
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("new bucket has %d documents", len(ids))
	}

	app.Close()
	if app.store != nil || app.shutdown != nil {
		t.Error("Close should release the store")
	}
}
