// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

// Kind distinguishes how a unit obtains its handle.
type Kind int

const (
	// KindContract units are deployed through the backend.
	KindContract Kind = iota
	// KindContractAt units are bound to an already deployed address.
	KindContractAt
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindContractAt:
		return "contract_at"
	default:
		return "unknown"
	}
}

// Unit is one artifact deployment step of a plan.
type Unit struct {
	// Name is unique within the module.
	Name string
	Kind Kind
	// Artifact identifies what to deploy, e.g. a contract name.
	Artifact string
	// Address is the existing handle of a KindContractAt unit.
	Address string
	Args    []Arg
	// After lists units that must complete first without passing a value.
	After []string
}

// Dependencies returns the names of all units this unit depends on, argument
// references first, in declaration order and without duplicates.
func (u *Unit) Dependencies() []string {
	seen := make(map[string]struct{})
	var deps []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		deps = append(deps, name)
	}
	for _, arg := range u.Args {
		if arg.IsReference() {
			add(arg.Unit())
		}
	}
	for _, name := range u.After {
		add(name)
	}
	return deps
}

// Plan is the materialized output of a module's BuildFunc for a single run.
type Plan struct {
	Module string
	// Units are kept in declaration order.
	Units []*Unit
	// Outputs maps an output name to the unit whose handle it exposes.
	Outputs map[string]string
}

// Unit looks a unit up by name.
func (p *Plan) Unit(name string) (*Unit, bool) {
	for _, u := range p.Units {
		if u.Name == name {
			return u, true
		}
	}
	return nil, false
}

// Names returns the unit names in declaration order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Units))
	for i, u := range p.Units {
		names[i] = u.Name
	}
	return names
}
