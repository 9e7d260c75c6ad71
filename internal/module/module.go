// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// BuildFunc declares the units of a module on the given Builder. It must be
// free of side effects; it may run once per deployment run.
type BuildFunc func(m *Builder) error

// Parameters holds the per-run values of a module's parameters.
type Parameters map[string]any

// Module is a named, immutable deployment declaration.
type Module struct {
	name   string
	source string
	build  BuildFunc
}

// Option customizes a Module at construction time.
type Option func(*Module)

// WithSource records where the module was declared, e.g. a file path.
func WithSource(source string) Option {
	return func(m *Module) { m.source = source }
}

// New creates a module. It does not validate the name; registries do.
func New(name string, build BuildFunc, opts ...Option) *Module {
	m := &Module{name: name, build: build, source: "go"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Source returns where the module was declared.
func (m *Module) Source() string {
	return m.source
}

// Build invokes the BuildFunc with a fresh Builder and validates the result.
func (m *Module) Build(params Parameters) (*Plan, error) {
	if m.build == nil {
		return nil, &BuildError{Module: m.name, Err: fmt.Errorf("module has no build function")}
	}

	b := newBuilder(m.name, params)
	if err := m.build(b); err != nil {
		b.errs = multierror.Append(b.errs, err)
	}
	b.validate()

	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, &BuildError{Module: m.name, Err: err}
	}
	return b.plan(), nil
}

// BuildError reports that a module's build function produced an invalid plan.
type BuildError struct {
	Module string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("module '%s' is invalid: %v", e.Module, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// UnknownUnitError reports a reference to a unit the module never declared.
type UnknownUnitError struct {
	Unit       string
	Referenced string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unit '%s' refers to undeclared unit '%s'", e.Unit, e.Referenced)
}
