// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package results holds the outcome of a deployment run: one UnitResult per
// declared unit plus the handles the module exposes as outputs.
//
// A Result is written only by the executor's coordinator while a run is in
// progress and is read-only once Run returns. Units move through
//
//	Pending → Running → Succeeded | Failed
//	Pending → Skipped
//	Running → Skipped (cancelled before a worker picked the unit up)
//
// and never leave a terminal status.
package results
