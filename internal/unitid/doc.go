// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package unitid defines the canonical identifier of a deployment unit.
//
// A unit is addressed by the module that declares it and its own name within
// that module. The canonical string form is "Module#unit", for example
// "OpenMarketModule#Openmarket". The same form is used as the key in state
// stores, so it must stay stable across releases.
package unitid
