// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry holds the named deployment modules known to one
// application instance.
//
// A Registry is an explicit value passed to whatever runs modules; there is no
// process-wide module table. Modules enter it either from Go code, through
// Define or a Provider's Register method, or from .hcl files through
// LoadDir. Names are unique per registry and defining a module never deploys
// anything.
package registry
