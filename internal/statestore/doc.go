// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package statestore defines where the handles of successfully deployed units
// are remembered between runs.
//
// # Why a State Store Exists
//
// Deployments are not free and usually not idempotent: deploying the same
// contract twice yields two contracts. Before calling the backend for a unit,
// the executor asks the store whether the unit was already deployed and, if
// so, reuses the recorded handle.
//
// # What Gets Stored
//
// Only units that succeeded are written. Failed and skipped units leave no
// trace, so the next run retries them.
//
// # Implementations
//
//   - Memory (this package): process-local, mainly for tests and single runs
//   - filestate: a JSON file on disk, one per deployment
//   - redisstate: a Redis hash, shared between machines
package statestore

import (
	"context"

	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// Store records the handles of deployed units.
//
// Implementations MUST be safe for concurrent use; the executor calls them
// from several workers at once.
type Store interface {
	// Get returns the recorded handle of a unit. The boolean is false when
	// nothing was recorded; an error means the store could not be consulted.
	Get(ctx context.Context, id unitid.Address) (backend.Handle, bool, error)

	// Put records the handle of a successfully deployed unit.
	Put(ctx context.Context, id unitid.Address, h backend.Handle) error
}

// Lister is implemented by stores that can enumerate their records, keyed by
// canonical unit address.
type Lister interface {
	All(ctx context.Context) (map[string]backend.Handle, error)
}
