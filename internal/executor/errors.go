// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package executor

import "fmt"

// UnresolvedReferenceError means a unit was about to be dispatched while one of
// the units it references had no handle. Ordering makes this impossible, so it
// signals a bug rather than a deployment problem.
type UnresolvedReferenceError struct {
	Unit string
	Ref  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unit '%s' references unit '%s' which has no handle", e.Unit, e.Ref)
}
