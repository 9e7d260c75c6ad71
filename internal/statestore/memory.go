// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package statestore

import (
	"context"
	"sync"

	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// Memory is an in-memory Store backed by sync.Map.
type Memory struct {
	handles sync.Map // Key: unitid.Address string, Value: backend.Handle
}

var (
	_ Store  = (*Memory)(nil)
	_ Lister = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, id unitid.Address) (backend.Handle, bool, error) {
	v, ok := m.handles.Load(id.String())
	if !ok {
		return "", false, nil
	}
	return v.(backend.Handle), true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, id unitid.Address, h backend.Handle) error {
	m.handles.Store(id.String(), h)
	return nil
}

// All implements Lister.
func (m *Memory) All(_ context.Context) (map[string]backend.Handle, error) {
	return m.Snapshot(), nil
}

// Snapshot returns a copy of everything recorded, keyed by canonical address.
func (m *Memory) Snapshot() map[string]backend.Handle {
	out := make(map[string]backend.Handle)
	m.handles.Range(func(k, v any) bool {
		out[k.(string)] = v.(backend.Handle)
		return true
	})
	return out
}
