// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/metrics"
	"github.com/specialistvlad/deploygridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	metrics    *metrics.Collector
	backend    backend.Backend
	httpServer *http.Server
}

// Option customizes an App.
type Option func(*options)

type options struct {
	logW      io.Writer
	providers []registry.Provider
	backend   backend.Backend
}

// WithLogOutput sends logs to w instead of the report writer.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logW = w }
}

// WithProviders replaces the built-in Go modules.
func WithProviders(providers ...registry.Provider) Option {
	return func(o *options) { o.providers = providers }
}

// WithBackend replaces the simulated chain backend.
func WithBackend(b backend.Backend) Option {
	return func(o *options) { o.backend = b }
}

// NewApp is the constructor for the main application. It returns an App with
// its own logger and registry, holding the built-in Go modules and those
// declared under cfg.ModulesPath.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	o := &options{logW: outW, providers: coreModules}
	for _, opt := range opts {
		opt(o)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, o.logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	for _, p := range o.providers {
		p.Register(reg)
	}
	logger.Debug("Go modules registered.", "count", reg.Len())

	if cfg.ModulesPath != "" {
		if err := reg.LoadDir(ctx, cfg.ModulesPath); err != nil {
			return nil, fmt.Errorf("failed to load modules: %w", err)
		}
	}
	logger.Debug("Registry ready.", "modules", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  metrics.New(),
		backend:  o.backend,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the collector fed by deployment runs.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	Name   string
	Source string
}

// Modules lists the registered modules sorted by name.
func (a *App) Modules() []ModuleInfo {
	names := a.registry.Names()
	out := make([]ModuleInfo, 0, len(names))
	for _, name := range names {
		mod, _ := a.registry.Lookup(name)
		out = append(out, ModuleInfo{Name: name, Source: mod.Source()})
	}
	return out
}
