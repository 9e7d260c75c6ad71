// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package filestate keeps deployed handles in a JSON file such as
// deployed_addresses.json:
//
//	{
//	  "OpenMarketModule#Openmarket": "0x5FbDB2315678afecb367f032d93F642f64180aa3"
//	}
//
// The file is rewritten atomically on every Put, so a crash mid-run leaves
// either the old or the new content.
package filestate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/statestore"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// DefaultFileName is the file name used when only a directory is configured.
const DefaultFileName = "deployed_addresses.json"

// Store is a statestore.Store persisted to a single JSON file.
type Store struct {
	path string

	mu      sync.Mutex
	loaded  bool
	handles map[string]backend.Handle
}

var (
	_ statestore.Store  = (*Store)(nil)
	_ statestore.Lister = (*Store)(nil)
)

// New creates a store for path. If path is an existing directory the store
// uses DefaultFileName inside it. The file is read lazily.
func New(path string) *Store {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Get implements statestore.Store.
func (s *Store) Get(ctx context.Context, id unitid.Address) (backend.Handle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", false, err
	}
	h, ok := s.handles[id.String()]
	return h, ok, nil
}

// Put implements statestore.Store.
func (s *Store) Put(ctx context.Context, id unitid.Address, h backend.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	key := id.String()
	prev, had := s.handles[key]
	s.handles[key] = h
	if err := s.flush(); err != nil {
		if had {
			s.handles[key] = prev
		} else {
			delete(s.handles, key)
		}
		return err
	}
	ctxlog.FromContext(ctx).Debug("Recorded deployed unit.", "unit", key, "handle", h, "path", s.path)
	return nil
}

// All implements statestore.Lister. It returns a copy of the recorded
// handles keyed by canonical address.
func (s *Store) All(ctx context.Context) (map[string]backend.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]backend.Handle, len(s.handles))
	for k, v := range s.handles {
		out[k] = v
	}
	return out, nil
}

// load reads the file once. A missing file is an empty store.
func (s *Store) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	s.handles = make(map[string]backend.Handle)
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctxlog.FromContext(ctx).Debug("State file does not exist yet.", "path", s.path)
		s.loaded = true
		return nil
	case err != nil:
		return fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &s.handles); err != nil {
			return fmt.Errorf("failed to decode state file %s: %w", s.path, err)
		}
	}
	for key := range s.handles {
		if _, err := unitid.Parse(key); err != nil {
			return fmt.Errorf("state file %s: invalid entry %q: %w", s.path, key, err)
		}
	}
	s.loaded = true
	return nil
}

func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.handles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", s.path, err)
	}
	return nil
}
