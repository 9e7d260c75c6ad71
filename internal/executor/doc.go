// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package executor runs a module: it builds the plan, orders it, and deploys
// each unit through a backend on a bounded pool of workers.
//
// A single coordinator goroutine owns the run's results.Result. Workers only
// receive a fully resolved job and report a completion back; they never touch
// the result. A unit is handed to a worker once all of its dependencies have
// succeeded. When a unit fails, everything that depends on it, directly or
// transitively, is skipped while independent branches keep going.
package executor
