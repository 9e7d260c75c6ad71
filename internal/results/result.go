// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package results

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// SkippedError explains why a unit never ran.
type SkippedError struct {
	Unit string
	// Dependency is the unit whose failure caused the skip. It is empty when
	// the run was cancelled.
	Dependency string
	// Cause is set when the run was cancelled.
	Cause error
}

func (e *SkippedError) Error() string {
	if e.Dependency != "" {
		return fmt.Sprintf("unit '%s' skipped: dependency '%s' did not succeed", e.Unit, e.Dependency)
	}
	return fmt.Sprintf("unit '%s' skipped: %v", e.Unit, e.Cause)
}

func (e *SkippedError) Unwrap() error {
	return e.Cause
}

// UnitResult is the outcome of one unit.
type UnitResult struct {
	ID     unitid.Address
	Status Status
	Handle backend.Handle
	Err    error
	// Reused is true when the handle came from the state store.
	Reused      bool
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration returns how long the unit ran. It is zero for units that never
// started.
func (u *UnitResult) Duration() time.Duration {
	if u.StartedAt.IsZero() || u.CompletedAt.IsZero() {
		return 0
	}
	return u.CompletedAt.Sub(u.StartedAt)
}

// Result maps every declared unit of a module to its outcome.
type Result struct {
	Module string
	RunID  string
	Units  map[string]*UnitResult
	// Order is the deployment order the run used.
	Order []string
	// Outputs maps output names to the units they expose.
	Outputs map[string]string
}

// New creates a result with every unit in Pending.
func New(moduleName, runID string, order []string, outputs map[string]string) *Result {
	r := &Result{
		Module:  moduleName,
		RunID:   runID,
		Units:   make(map[string]*UnitResult, len(order)),
		Order:   order,
		Outputs: outputs,
	}
	for _, name := range order {
		r.Units[name] = &UnitResult{
			ID:     unitid.Address{Module: moduleName, Unit: name},
			Status: Pending,
		}
	}
	return r
}

// Get returns the result of a unit.
func (r *Result) Get(unit string) (*UnitResult, bool) {
	u, ok := r.Units[unit]
	return u, ok
}

// Succeeded reports whether every unit succeeded.
func (r *Result) Succeeded() bool {
	for _, u := range r.Units {
		if u.Status != Succeeded {
			return false
		}
	}
	return true
}

// Count returns the number of units in status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, u := range r.Units {
		if u.Status == s {
			n++
		}
	}
	return n
}

// Output returns the handle exposed under name. It is false when the output
// does not exist or its unit did not succeed.
func (r *Result) Output(name string) (backend.Handle, bool) {
	unit, ok := r.Outputs[name]
	if !ok {
		return "", false
	}
	u, ok := r.Units[unit]
	if !ok || u.Status != Succeeded {
		return "", false
	}
	return u.Handle, true
}

// Handles returns the handle of every succeeded unit.
func (r *Result) Handles() map[string]backend.Handle {
	out := make(map[string]backend.Handle)
	for name, u := range r.Units {
		if u.Status == Succeeded {
			out[name] = u.Handle
		}
	}
	return out
}

// Err aggregates the errors of failed units in deployment order. Skipped units
// are a symptom, not a cause, so they only contribute when nothing failed,
// which happens when the run was cancelled.
func (r *Result) Err() error {
	var failed, skipped *multierror.Error
	for _, name := range r.Order {
		u := r.Units[name]
		switch u.Status {
		case Failed:
			failed = multierror.Append(failed, u.Err)
		case Skipped:
			var skipErr *SkippedError
			if errors.As(u.Err, &skipErr) && skipErr.Dependency != "" {
				continue
			}
			skipped = multierror.Append(skipped, u.Err)
		}
	}
	if err := failed.ErrorOrNil(); err != nil {
		return err
	}
	return skipped.ErrorOrNil()
}
