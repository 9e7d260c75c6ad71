// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/specialistvlad/deploygridgo/internal/results"
	"github.com/specialistvlad/deploygridgo/internal/statestore"
	"github.com/specialistvlad/deploygridgo/internal/topology"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the size of the worker pool when none is configured.
const DefaultWorkers = 10

// Observer is notified from the coordinator goroutine as a run progresses.
type Observer interface {
	UnitFinished(ctx context.Context, moduleName string, u results.UnitResult)
	RunFinished(ctx context.Context, r *results.Result, elapsed time.Duration)
}

// Executor deploys modules. It is safe to run several modules concurrently
// with one Executor as long as the backend and state store allow it.
type Executor struct {
	backend  backend.Backend
	state    statestore.Store
	workers  int
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithState makes the executor reuse handles recorded in s and record new ones.
func WithState(s statestore.Store) Option {
	return func(e *Executor) { e.state = s }
}

// WithWorkers sets the number of concurrent backend calls. Values below one
// are ignored.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithObserver registers an observer for unit and run completions.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// New creates an executor that deploys through b.
func New(b backend.Backend, opts ...Option) *Executor {
	e := &Executor{backend: b, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the size of the worker pool.
func (e *Executor) Workers() int {
	return e.workers
}

// job is a unit ready for deployment with its arguments already resolved.
type job struct {
	unit *module.Unit
	id   unitid.Address
	args []any
}

// completion is what a worker reports back for a job.
type completion struct {
	unit        string
	handle      backend.Handle
	err         error
	reused      bool
	notStarted  bool
	startedAt   time.Time
	completedAt time.Time
}

// Run builds mod with params and deploys it.
//
// The returned error is reserved for problems that prevent the run from
// starting, such as build errors or dependency cycles; in that case no unit is
// deployed. Per-unit failures are recorded in the result and aggregated by
// results.Result.Err.
func (e *Executor) Run(ctx context.Context, mod *module.Module, params module.Parameters) (*results.Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "module", mod.Name(), "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	logger.Debug("Building deployment plan.")
	plan, err := mod.Build(params)
	if err != nil {
		return nil, err
	}
	graph, err := topology.Build(plan)
	if err != nil {
		return nil, fmt.Errorf("invalid plan for module '%s': %w", mod.Name(), err)
	}
	order := graph.Sort()
	logger.Info("Deployment plan ready.", "units", len(order), "order", order, "workers", e.workers)

	r := &run{
		exec:      e,
		plan:      plan,
		graph:     graph,
		result:    results.New(plan.Module, runID, order, plan.Outputs),
		remaining: make(map[string]int, len(order)),
	}
	r.execute(ctx)

	if e.observer != nil {
		e.observer.RunFinished(ctx, r.result, time.Since(started))
	}
	logger.Info("Deployment run finished.",
		"succeeded", r.result.Count(results.Succeeded),
		"failed", r.result.Count(results.Failed),
		"skipped", r.result.Count(results.Skipped),
		"duration", time.Since(started),
	)
	return r.result, nil
}

// run holds the coordinator state of one Run call.
type run struct {
	exec      *Executor
	plan      *module.Plan
	graph     *topology.Graph
	result    *results.Result
	remaining map[string]int
	ready     []string
	inFlight  int
}

func (r *run) execute(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	order := r.result.Order

	for _, name := range order {
		r.remaining[name] = len(r.graph.DependenciesOf(name))
		if r.remaining[name] == 0 {
			r.ready = append(r.ready, name)
		}
	}

	jobs := make(chan job, len(order))
	done := make(chan completion, len(order))

	var workers errgroup.Group
	for i := 1; i <= r.exec.workers; i++ {
		workerID := i
		workers.Go(func() error {
			r.exec.worker(ctx, jobs, done, workerID)
			return nil
		})
	}

	for {
		if ctx.Err() == nil {
			r.dispatchReady(ctx, jobs)
		}
		if r.inFlight == 0 {
			break
		}
		r.complete(ctx, <-done)
	}

	close(jobs)
	_ = workers.Wait()

	// Anything still pending was never started because the run was cancelled.
	cause := context.Cause(ctx)
	for _, name := range order {
		u := r.result.Units[name]
		if u.Status == results.Pending {
			logger.Warn("Unit not started because the run was cancelled.", "unit", name, "cause", cause)
			r.finish(ctx, name, results.Skipped, &results.SkippedError{Unit: name, Cause: cause})
		}
	}
}

// dispatchReady hands every ready unit to the workers.
func (r *run) dispatchReady(ctx context.Context, jobs chan<- job) {
	for len(r.ready) > 0 {
		name := r.ready[0]
		r.ready = r.ready[1:]

		unit, _ := r.plan.Unit(name)
		args, err := r.resolveArgs(unit)
		if err != nil {
			ctxlog.FromContext(ctx).Error("Failed to resolve unit arguments.", "unit", name, "error", err)
			r.finish(ctx, name, results.Failed, err)
			r.skipDependents(ctx, name)
			continue
		}

		r.result.Units[name].Status = results.Running
		r.inFlight++
		jobs <- job{unit: unit, id: r.result.Units[name].ID, args: args}
	}
}

// resolveArgs replaces references with the handles their units produced.
func (r *run) resolveArgs(u *module.Unit) ([]any, error) {
	args := make([]any, len(u.Args))
	for i, arg := range u.Args {
		if !arg.IsReference() {
			args[i] = arg.Value()
			continue
		}
		dep, ok := r.result.Units[arg.Unit()]
		if !ok || dep.Status != results.Succeeded || dep.Handle == "" {
			return nil, &UnresolvedReferenceError{Unit: u.Name, Ref: arg.Unit()}
		}
		args[i] = dep.Handle
	}
	return args, nil
}

// complete applies a worker's report and unlocks or skips dependents.
func (r *run) complete(ctx context.Context, c completion) {
	r.inFlight--
	logger := ctxlog.FromContext(ctx).With("unit", c.unit)

	u := r.result.Units[c.unit]
	u.StartedAt = c.startedAt
	u.CompletedAt = c.completedAt

	switch {
	case c.notStarted:
		r.finish(ctx, c.unit, results.Skipped, &results.SkippedError{Unit: c.unit, Cause: c.err})
	case c.err != nil:
		logger.Error("Unit failed.", "error", c.err)
		r.finish(ctx, c.unit, results.Failed, c.err)
		r.skipDependents(ctx, c.unit)
	default:
		u.Handle = c.handle
		u.Reused = c.reused
		logger.Info("Unit succeeded.", "handle", c.handle, "reused", c.reused)
		r.finish(ctx, c.unit, results.Succeeded, nil)
		for _, dep := range r.graph.DependentsOf(c.unit) {
			r.remaining[dep]--
			if r.remaining[dep] == 0 && r.result.Units[dep].Status == results.Pending {
				logger.Debug("Unlocking dependent unit.", "dependent", dep)
				r.ready = append(r.ready, dep)
			}
		}
	}
}

// skipDependents marks every pending unit downstream of failed as skipped.
func (r *run) skipDependents(ctx context.Context, failed string) {
	for _, dep := range r.graph.TransitiveDependentsOf(failed) {
		if r.result.Units[dep].Status != results.Pending {
			continue
		}
		ctxlog.FromContext(ctx).Warn("Skipping unit because a dependency failed.", "unit", dep, "dependency", failed)
		r.finish(ctx, dep, results.Skipped, &results.SkippedError{Unit: dep, Dependency: failed})
	}
}

func (r *run) finish(ctx context.Context, name string, status results.Status, err error) {
	u := r.result.Units[name]
	u.Status = status
	u.Err = err
	if r.exec.observer != nil {
		r.exec.observer.UnitFinished(ctx, r.result.Module, *u)
	}
}
