// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package topology turns a module plan into a dependency graph, rejects
// cycles, and produces a deterministic deployment order.
package topology
