// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package testutil holds fakes and helpers shared by the tests of several
// packages.
package testutil
