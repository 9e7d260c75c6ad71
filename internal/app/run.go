// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/executor"
	"github.com/specialistvlad/deploygridgo/internal/results"
	"github.com/specialistvlad/deploygridgo/internal/simbackend"
	"github.com/specialistvlad/deploygridgo/internal/statestore"
)

// ModuleNotFoundError is returned when the requested module is not registered.
type ModuleNotFoundError struct {
	Name      string
	Available []string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found; available modules: %v", e.Name, e.Available)
}

// Run deploys the configured module and writes a report to the App's output.
// The result is returned even when some units failed; the error then
// aggregates their failures.
func (a *App) Run(ctx context.Context) (*results.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")

	a.startHealthCheckServer(ctx)
	defer func() { _ = a.closeHealthCheckServer(ctx) }()

	mod, ok := a.registry.Lookup(a.config.Module)
	if !ok {
		return nil, &ModuleNotFoundError{Name: a.config.Module, Available: a.registry.Names()}
	}

	params, err := loadParameters(a.config.ParametersPath, mod.Name())
	if err != nil {
		return nil, err
	}

	state, closeState, err := a.openState(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeState(); err != nil {
			logger.Warn("Failed to close state store.", "error", err)
		}
	}()

	b, err := a.deployBackend(ctx, state)
	if err != nil {
		return nil, err
	}
	exec := executor.New(b,
		executor.WithState(state),
		executor.WithWorkers(a.config.WorkerCount),
		executor.WithObserver(a.metrics),
	)

	logger.Info("Starting deployment...", "module", mod.Name(), "source", mod.Source())
	res, err := exec.Run(ctx, mod, params)
	if err != nil {
		return nil, err
	}
	if err := writeReport(a.outW, res); err != nil {
		return res, fmt.Errorf("failed to write report: %w", err)
	}

	if err := res.Err(); err != nil {
		return res, fmt.Errorf("deployment of module '%s' did not complete: %w", mod.Name(), err)
	}
	logger.Info("Deployment finished.", "module", mod.Name())
	return res, nil
}

// deployBackend returns the injected backend or a simulated chain that
// continues after every deployment recorded in state.
func (a *App) deployBackend(ctx context.Context, state statestore.Store) (backend.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	var opts []simbackend.Option
	if a.config.Deployer != "" {
		opts = append(opts, simbackend.WithDeployer(common.HexToAddress(a.config.Deployer)))
	}
	if a.config.ArtifactsPath != "" {
		opts = append(opts, simbackend.WithArtifactsDir(a.config.ArtifactsPath))
	}
	if lister, ok := state.(statestore.Lister); ok {
		recorded, err := lister.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read recorded deployments: %w", err)
		}
		handles := make([]backend.Handle, 0, len(recorded))
		for _, h := range recorded {
			handles = append(handles, h)
		}
		ctxlog.FromContext(ctx).Debug("Simulated chain resumes after recorded deployments.", "recorded", len(handles))
		opts = append(opts, simbackend.WithDeployed(handles...))
	}
	return simbackend.New(opts...), nil
}
