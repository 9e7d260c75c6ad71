// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package redisstate keeps deployed handles in a Redis hash so that several
// machines can share one deployment state.
package redisstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/statestore"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// DefaultKey is the hash that holds the handles when no key is configured.
const DefaultKey = "deploygrid:deployed"

// Store is a statestore.Store backed by a single Redis hash. Fields are
// canonical unit addresses and values are handles.
type Store struct {
	client redis.UniversalClient
	key    string
}

var (
	_ statestore.Store  = (*Store)(nil)
	_ statestore.Lister = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithKey sets the hash key, e.g. to separate networks.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New wraps an existing client. The caller keeps ownership of the client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to the Redis server at addr and checks the connection.
func Dial(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return New(client, opts...), nil
}

// Key returns the hash key in use.
func (s *Store) Key() string {
	return s.key
}

// Get implements statestore.Store.
func (s *Store) Get(ctx context.Context, id unitid.Address) (backend.Handle, bool, error) {
	v, err := s.client.HGet(ctx, s.key, id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s from redis: %w", id, err)
	}
	return backend.Handle(v), true, nil
}

// Put implements statestore.Store.
func (s *Store) Put(ctx context.Context, id unitid.Address, h backend.Handle) error {
	if err := s.client.HSet(ctx, s.key, id.String(), string(h)).Err(); err != nil {
		return fmt.Errorf("failed to record %s in redis: %w", id, err)
	}
	return nil
}

// All implements statestore.Lister.
func (s *Store) All(ctx context.Context) (map[string]backend.Handle, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list deployed units from redis: %w", err)
	}
	out := make(map[string]backend.Handle, len(raw))
	for k, v := range raw {
		out[k] = backend.Handle(v)
	}
	return out, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
