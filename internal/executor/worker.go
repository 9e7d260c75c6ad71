// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/module"
)

// worker is the processing loop of a single pool worker.
func (e *Executor) worker(ctx context.Context, jobs <-chan job, done chan<- completion, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range jobs {
		if err := ctx.Err(); err != nil {
			done <- completion{unit: j.unit.Name, err: context.Cause(ctx), notStarted: true}
			continue
		}

		workerCtx := ctxlog.With(ctx, "workerID", workerID, "unit", j.unit.Name)
		ctxlog.FromContext(workerCtx).Debug("Worker picked up unit.", "artifact", j.unit.Artifact, "kind", j.unit.Kind)

		c := completion{unit: j.unit.Name, startedAt: time.Now()}
		c.handle, c.reused, c.err = e.deploy(workerCtx, j)
		c.completedAt = time.Now()
		done <- c
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// deploy obtains the handle of one unit: from its declared address, from the
// state store, or from the backend, in that order.
func (e *Executor) deploy(ctx context.Context, j job) (backend.Handle, bool, error) {
	logger := ctxlog.FromContext(ctx)
	u := j.unit

	if u.Kind == module.KindContractAt {
		logger.Debug("Using declared address.", "handle", u.Address)
		return backend.Handle(u.Address), false, nil
	}

	id := j.id
	if e.state != nil {
		h, found, err := e.state.Get(ctx, id)
		if err != nil {
			return "", false, fmt.Errorf("failed to look up unit '%s' in state store: %w", u.Name, err)
		}
		if found {
			logger.Info("Reusing recorded deployment.", "handle", h)
			return h, true, nil
		}
	}

	logger.Info("Deploying unit.", "artifact", u.Artifact, "args", len(j.args))
	h, err := e.backend.Deploy(ctx, u.Artifact, j.args)
	if err == nil && h == "" {
		err = fmt.Errorf("backend returned an empty handle")
	}
	if err != nil {
		return "", false, &backend.DeploymentError{Unit: u.Name, Artifact: u.Artifact, Err: err}
	}

	if e.state != nil {
		if err := e.state.Put(ctx, id, h); err != nil {
			return "", false, fmt.Errorf("unit '%s' deployed at %s but could not be recorded: %w", u.Name, h, err)
		}
	}
	return h, false, nil
}
