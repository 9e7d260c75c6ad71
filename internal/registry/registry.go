// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// Provider is implemented by packages that contribute Go-defined modules.
type Provider interface {
	Register(r *Registry)
}

// Registry stores modules by name.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*module.Module
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*module.Module),
	}
}

// DuplicateNameError is returned when a module name is already taken.
type DuplicateNameError struct {
	Name string
	// Existing is the source of the module that already holds the name.
	Existing string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("module '%s' is already defined (in %s)", e.Name, e.Existing)
}

// Define registers a new module under name and returns its handle.
func (r *Registry) Define(name string, build module.BuildFunc, opts ...module.Option) (*module.Module, error) {
	if err := unitid.ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid module name: %w", err)
	}
	if build == nil {
		return nil, fmt.Errorf("module '%s' has no build function", name)
	}
	return r.add(module.New(name, build, opts...))
}

// MustDefine is like Define but panics on error. It is meant for static
// registration from Provider implementations, where a clash is a programmer
// error.
func (r *Registry) MustDefine(name string, build module.BuildFunc, opts ...module.Option) *module.Module {
	m, err := r.Define(name, build, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Add registers an already constructed module.
func (r *Registry) Add(m *module.Module) error {
	if err := unitid.ValidateName(m.Name()); err != nil {
		return fmt.Errorf("invalid module name: %w", err)
	}
	_, err := r.add(m)
	return err
}

func (r *Registry) add(m *module.Module) (*module.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.modules[m.Name()]; exists {
		return nil, &DuplicateNameError{Name: m.Name(), Existing: existing.Source()}
	}
	r.modules[m.Name()] = m
	return m, nil
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (*module.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	return m, ok
}

// Names returns all registered module names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
