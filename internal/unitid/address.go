// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package unitid

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator joins the module name and the unit name in the canonical form.
const Separator = "#"

// nameRegex matches a valid module or unit name.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Address is the structured representation of a unit identifier.
type Address struct {
	Module string
	Unit   string
}

// New creates an Address after validating both of its parts.
func New(module, unit string) (Address, error) {
	if err := ValidateName(module); err != nil {
		return Address{}, fmt.Errorf("invalid module name: %w", err)
	}
	if err := ValidateName(unit); err != nil {
		return Address{}, fmt.Errorf("invalid unit name: %w", err)
	}
	return Address{Module: module, Unit: unit}, nil
}

// Must is like New but panics on invalid input.
func Must(module, unit string) Address {
	addr, err := New(module, unit)
	if err != nil {
		panic(err)
	}
	return addr
}

// Parse creates an Address from its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}
	module, unit, ok := strings.Cut(raw, Separator)
	if !ok {
		return Address{}, fmt.Errorf("identifier %q is missing the %q separator", raw, Separator)
	}
	if strings.Contains(unit, Separator) {
		return Address{}, fmt.Errorf("identifier %q contains more than one %q separator", raw, Separator)
	}
	return New(module, unit)
}

// ValidateName reports whether name can be used as a module or unit name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("name %q must start with a letter or underscore and contain only letters, digits, '_' or '-'", name)
	}
	return nil
}

// String serializes the Address into its canonical representation.
func (a Address) String() string {
	return a.Module + Separator + a.Unit
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Module == "" && a.Unit == ""
}
