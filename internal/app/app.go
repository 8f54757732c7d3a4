package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/amoebajs/builder-sub000/internal/config"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/publish"
	"github.com/amoebajs/builder-sub000/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	loader  config.Loader
	modules []registry.Module

	mu        sync.RWMutex
	registry  *registry.Registry
	model     *config.Model
	publisher publish.Publisher
}

// NewApp is the constructor for the main application. Documents go to outW,
// logs to logW. Configuration that fails to load or a registry that fails
// validation is a fatal startup error and panics.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	a := &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		loader:  loader,
		modules: modules,
	}
	if err := a.Reload(ctx); err != nil {
		panic(err)
	}
	return a
}

// Reload reads the configuration again and rebuilds the registry. On failure
// the previous state is kept.
func (a *App) Reload(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	model, err := a.loader.Load(ctx, a.cfg.sourcePaths()...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "pages", len(model.Pages), "compositions", len(model.Compositions))

	reg := registry.New()
	if err := loadModules(reg, a.modules, model); err != nil {
		return err
	}
	logger.Debug("All template modules registered.", "count", len(a.modules), "templates", len(reg.Templates()))

	if err := reg.Validate(ctx); err != nil {
		return err
	}
	logger.Debug("Registry validation passed.")

	a.mu.Lock()
	a.registry, a.model = reg, model
	a.mu.Unlock()
	return nil
}

// loadModules registers modules and declared compositions. Duplicate
// registration panics inside the registry; it is reported as an error here
// so a reload cannot take the process down.
func loadModules(reg *registry.Registry, modules []registry.Module, model *config.Model) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to register templates: %v", r)
		}
	}()
	reg.Load(modules...)
	reg.PopulateFromModel(model)
	return nil
}

// Registry returns the application's current registry.
func (a *App) Registry() *registry.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry
}

// Model returns the currently loaded configuration model.
func (a *App) Model() *config.Model {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// SetPublisher installs a publisher that receives every compiled document.
func (a *App) SetPublisher(p publish.Publisher) {
	a.mu.Lock()
	a.publisher = p
	a.mu.Unlock()
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
