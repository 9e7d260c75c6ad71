// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

import "fmt"

// Arg is a single constructor argument of a unit. It is either a literal value
// or a reference to the future handle of another unit in the same module.
type Arg struct {
	ref   string
	value any
	isRef bool
}

// Literal wraps a plain value.
func Literal(v any) Arg {
	return Arg{value: v}
}

// Reference creates an argument that resolves to the handle of the named unit.
func Reference(unit string) Arg {
	return Arg{ref: unit, isRef: true}
}

// IsReference reports whether the argument refers to another unit.
func (a Arg) IsReference() bool {
	return a.isRef
}

// Unit returns the name of the referenced unit. It is empty for literals.
func (a Arg) Unit() string {
	return a.ref
}

// Value returns the literal value. It is nil for references.
func (a Arg) Value() any {
	return a.value
}

func (a Arg) String() string {
	if a.isRef {
		return "ref(" + a.ref + ")"
	}
	return fmt.Sprintf("%v", a.value)
}
