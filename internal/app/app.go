package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/robogrid/internal/config"
	"github.com/specialistvlad/robogrid/internal/ctxlog"
	"github.com/specialistvlad/robogrid/internal/extension"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/session"
	"github.com/specialistvlad/robogrid/internal/value"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     config.Config
	modules    []registry.Module
	vars       value.Record
	registry   *registry.Registry
	report     *registry.LoadReport
	newBackend func(config.Session) (session.Backend, error)
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results and scripts go
// to outW, logs to logW. The registry holds the compiled-in node types plus the
// extensions found under the configured directory and is sealed on return.
func NewApp(outW, logW io.Writer, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		modules:    coreModules,
		registry:   registry.New(),
		newBackend: newBackend,
	}
	for _, opt := range opts {
		opt(a)
	}

	var sources []registry.Source
	if cfg.ExtensionsDir != "" {
		sources = append(sources, extension.Dir{Path: cfg.ExtensionsDir})
	}
	report, err := a.registry.Load(a.context(context.Background()), a.modules, sources...)
	if err != nil {
		return nil, err
	}
	a.report = report
	return a, nil
}

// context attaches the app logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// LoadReport returns the outcome of loading the registry.
func (a *App) LoadReport() *registry.LoadReport {
	return a.report
}

// Config returns the validated configuration.
func (a *App) Config() config.Config {
	return a.config
}
