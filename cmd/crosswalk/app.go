package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/crosswalk/config"
	"github.com/c360studio/crosswalk/crosswalk"
	"github.com/c360studio/crosswalk/metric"
	"github.com/c360studio/crosswalk/storage"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	baseURI    string
	natsURL    string
}

// App wires configuration, logging, metrics and the engine for one command.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	engine   *crosswalk.Engine

	// Document store, opened on demand
	shutdown func()
	store    *storage.Store
}

// NewApp loads the layered configuration, applies flag overrides and builds
// the engine.
func NewApp(opts *globalOptions, stderr io.Writer) (*App, error) {
	logger := newLogger(opts.logLevel, stderr)

	loader := config.NewLoader(logger)
	loader.ExplicitPath = opts.configPath
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.baseURI != "" {
		cfg.BaseURI = opts.baseURI
	}
	if opts.natsURL != "" {
		cfg.NATS.URL = opts.natsURL
	}

	registry := prometheus.NewRegistry()
	metrics, err := metric.New(registry)
	if err != nil {
		return nil, err
	}

	engine, err := crosswalk.NewEngine(cfg,
		crosswalk.WithLogger(logger),
		crosswalk.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		engine:   engine,
	}, nil
}

// newLogger maps a --log-level value to a text handler on w.
func newLogger(logLevel string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Run executes one pipeline run. The result goes to outputPath, or the
// configured output path, or stdout.
func (a *App) Run(ctx context.Context, req crosswalk.Request, outputPath string, stdout io.Writer) (*crosswalk.Result, error) {
	if outputPath == "" {
		outputPath = a.cfg.Output.Path
	}
	if outputPath == "" {
		req.Output = stdout
		return a.engine.Run(ctx, req)
	}

	var res *crosswalk.Result
	err := writeFile(outputPath, func(w io.Writer) error {
		req.Output = w
		var err error
		res, err = a.engine.Run(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("Wrote output", "path", outputPath, "root", res.RootID, "inputs", len(res.Files))
	return res, nil
}

// writeFile writes through a temporary file and renames it into place, so a
// failed run leaves the previous output untouched.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// OpenStore connects to NATS, or starts an embedded server when no URL is
// configured, and opens the document bucket.
func (a *App) OpenStore(ctx context.Context) (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if a.cfg.NATS.URL != "" {
		a.logger.Debug("Connecting to NATS", "url", a.cfg.NATS.URL)
	} else {
		a.logger.Debug("Starting embedded NATS server", "store_dir", a.cfg.NATS.StoreDir)
	}
	nc, shutdown, err := storage.Connect(a.cfg.NATS.URL, a.cfg.NATS.StoreDir)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		shutdown()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	store, err := storage.NewStore(ctx, js, a.cfg.NATS.Bucket,
		storage.WithLogger(a.logger),
		storage.WithVocabulary(a.engine.Vocabulary()))
	if err != nil {
		shutdown()
		return nil, err
	}

	a.shutdown = shutdown
	a.store = store
	return store, nil
}

// storeContext bounds one store call by the configured timeout.
func (a *App) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.NATS.Timeout)
}

// Close releases the NATS connection and any embedded server.
func (a *App) Close() {
	if a.shutdown != nil {
		a.shutdown()
		a.shutdown = nil
		a.store = nil
	}
}
