// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package backend defines the contract between the executor and whatever
// actually performs a deployment.
package backend

import (
	"context"
	"fmt"
)

// Handle identifies a deployed artifact, typically its address.
type Handle string

func (h Handle) String() string {
	return string(h)
}

// Backend deploys a single artifact with resolved constructor arguments.
//
// Implementations must be safe for concurrent use: the executor calls Deploy
// from several workers at once. They should return promptly with ctx.Err()
// when ctx is cancelled.
type Backend interface {
	Deploy(ctx context.Context, artifact string, args []any) (Handle, error)
}

// Func adapts an ordinary function to the Backend interface.
type Func func(ctx context.Context, artifact string, args []any) (Handle, error)

// Deploy calls f.
func (f Func) Deploy(ctx context.Context, artifact string, args []any) (Handle, error) {
	return f(ctx, artifact, args)
}

// DeploymentError reports that the backend failed to deploy a unit.
type DeploymentError struct {
	Unit     string
	Artifact string
	Err      error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment of unit '%s' (artifact '%s') failed: %v", e.Unit, e.Artifact, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}
