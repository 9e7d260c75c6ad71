// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// Future stands for the handle a unit will produce once deployed.
type Future struct {
	module string
	unit   string
}

// Unit returns the name of the unit behind the future.
func (f *Future) Unit() string {
	return f.unit
}

// Module returns the name of the module that declared the unit.
func (f *Future) Module() string {
	return f.module
}

// Builder collects the units of a module while its BuildFunc runs.
type Builder struct {
	module  string
	params  Parameters
	units   []*Unit
	index   map[string]*Unit
	outputs map[string]string
	errs    *multierror.Error
}

func newBuilder(module string, params Parameters) *Builder {
	if params == nil {
		params = Parameters{}
	}
	return &Builder{
		module:  module,
		params:  params,
		index:   make(map[string]*Unit),
		outputs: make(map[string]string),
	}
}

// ModuleName returns the name of the module being built.
func (b *Builder) ModuleName() string {
	return b.module
}

// Contract declares a unit deploying artifact. The unit name defaults to the
// artifact name and can be overridden with ID.
func (b *Builder) Contract(artifact string, opts ...UnitOption) *Future {
	return b.add(&Unit{Kind: KindContract, Artifact: artifact}, opts)
}

// ContractAt declares a unit bound to an artifact already deployed at address.
// It produces a handle without a backend call.
func (b *Builder) ContractAt(artifact, address string, opts ...UnitOption) *Future {
	if address == "" {
		b.errorf("contract_at '%s' requires an address", artifact)
	}
	return b.add(&Unit{Kind: KindContractAt, Artifact: artifact, Address: address}, opts)
}

// Parameter returns the run value of the named parameter, or def when the run
// does not supply one. Calling it without def makes the parameter required.
func (b *Builder) Parameter(name string, def ...any) any {
	if v, ok := b.params[name]; ok {
		return v
	}
	switch len(def) {
	case 0:
		b.errorf("parameter '%s' is required but was not provided", name)
		return nil
	case 1:
		return def[0]
	default:
		b.errorf("parameter '%s' declares %d defaults, expected at most one", name, len(def))
		return nil
	}
}

// Output exposes the handle of f under name in the run result.
func (b *Builder) Output(name string, f *Future) {
	if f == nil {
		b.errorf("output '%s' has no value", name)
		return
	}
	if _, exists := b.outputs[name]; exists {
		b.errorf("output '%s' declared more than once", name)
		return
	}
	b.outputs[name] = f.unit
}

// Ref returns a future for a unit by name. It allows referring to units that
// are declared later; unknown names are reported when the build finishes.
func (b *Builder) Ref(unit string) *Future {
	return &Future{module: b.module, unit: unit}
}

// Errorf records a build error. Build functions use it to report problems
// without aborting the rest of the declaration.
func (b *Builder) Errorf(format string, args ...any) {
	b.errorf(format, args...)
}

func (b *Builder) errorf(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf(format, args...))
}

func (b *Builder) add(u *Unit, opts []UnitOption) *Future {
	cfg := &unitConfig{builder: b}
	for _, opt := range opts {
		opt(cfg)
	}

	u.Name = u.Artifact
	if cfg.id != "" {
		u.Name = cfg.id
	}
	u.Args = cfg.args
	u.After = cfg.after

	if u.Artifact == "" {
		b.errorf("unit '%s' has no artifact", u.Name)
	}
	if err := unitid.ValidateName(u.Name); err != nil {
		b.errorf("unit in module '%s': %v", b.module, err)
		return &Future{module: b.module, unit: u.Name}
	}
	if _, exists := b.index[u.Name]; exists {
		b.errorf("unit '%s' declared more than once", u.Name)
		return &Future{module: b.module, unit: u.Name}
	}

	b.index[u.Name] = u
	b.units = append(b.units, u)
	return &Future{module: b.module, unit: u.Name}
}

// validate checks that every reference and output names a declared unit.
func (b *Builder) validate() {
	for _, u := range b.units {
		for _, dep := range u.Dependencies() {
			if _, ok := b.index[dep]; !ok {
				b.errs = multierror.Append(b.errs, &UnknownUnitError{Unit: u.Name, Referenced: dep})
			}
		}
	}
	for name, unit := range b.outputs {
		if _, ok := b.index[unit]; !ok {
			b.errorf("output '%s' refers to undeclared unit '%s'", name, unit)
		}
	}
}

func (b *Builder) plan() *Plan {
	outputs := make(map[string]string, len(b.outputs))
	for k, v := range b.outputs {
		outputs[k] = v
	}
	return &Plan{
		Module:  b.module,
		Units:   b.units,
		Outputs: outputs,
	}
}
