// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/deploygridgo/internal/backend"
)

// Call is one recorded Deploy invocation.
type Call struct {
	Artifact string
	Args     []any
	Start    time.Time
	End      time.Time
}

// RecordingBackend is a backend.Backend that records every call. By default
// it succeeds and returns "0x" followed by the artifact name.
type RecordingBackend struct {
	// Failures maps artifacts to the error their deployment returns.
	Failures map[string]error
	// Delay is slept inside every call, honouring cancellation.
	Delay time.Duration
	// Hook, when set, runs at the start of every call; a non-nil error fails
	// the call.
	Hook func(ctx context.Context, artifact string) error

	mu    sync.Mutex
	calls []Call
}

var _ backend.Backend = (*RecordingBackend)(nil)

// NewRecordingBackend creates a backend that fails the given artifacts.
func NewRecordingBackend(failures map[string]error) *RecordingBackend {
	return &RecordingBackend{Failures: failures}
}

// Deploy implements backend.Backend.
func (b *RecordingBackend) Deploy(ctx context.Context, artifact string, args []any) (backend.Handle, error) {
	call := Call{Artifact: artifact, Args: args, Start: time.Now()}
	defer func() {
		call.End = time.Now()
		b.mu.Lock()
		b.calls = append(b.calls, call)
		b.mu.Unlock()
	}()

	if b.Hook != nil {
		if err := b.Hook(ctx, artifact); err != nil {
			return "", err
		}
	}
	if b.Delay > 0 {
		select {
		case <-time.After(b.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err, ok := b.Failures[artifact]; ok {
		return "", err
	}
	return backend.Handle("0x" + artifact), nil
}

// Calls returns the recorded calls in completion order.
func (b *RecordingBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Artifacts returns the artifact of every recorded call in completion order.
func (b *RecordingBackend) Artifacts() []string {
	calls := b.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Artifact
	}
	return out
}

// Call returns the recorded call for artifact.
func (b *RecordingBackend) Call(artifact string) (Call, bool) {
	for _, c := range b.Calls() {
		if c.Artifact == artifact {
			return c, true
		}
	}
	return Call{}, false
}
