// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package simbackend

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
)

// DefaultDeployer is the first account of the usual local development
// mnemonic.
var DefaultDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// Deployment is what the backend remembers about one Deploy call.
type Deployment struct {
	Artifact string
	Address  common.Address
	Nonce    uint64
	Args     []any
	// Code is the creation code followed by the encoded constructor
	// arguments. It is empty when no artifacts directory is configured.
	Code []byte
}

// Backend is a backend.Backend that assigns CREATE addresses in memory.
type Backend struct {
	deployer     common.Address
	artifactsDir string

	mu          sync.Mutex
	nonce       uint64
	taken       map[common.Address]struct{}
	index       map[string]string
	artifacts   map[string]*Artifact
	deployments []*Deployment
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithDeployer sets the account whose nonce determines the addresses.
func WithDeployer(addr common.Address) Option {
	return func(b *Backend) { b.deployer = addr }
}

// WithNonce sets the nonce of the first deployment.
func WithNonce(nonce uint64) Option {
	return func(b *Backend) { b.nonce = nonce }
}

// WithDeployed tells the backend about handles deployed by earlier runs.
// Their addresses are never handed out again, and the first nonce is at least
// the number of such addresses. Handles that are not addresses are ignored.
func WithDeployed(handles ...backend.Handle) Option {
	return func(b *Backend) {
		for _, h := range handles {
			if common.IsHexAddress(string(h)) {
				b.taken[common.HexToAddress(string(h))] = struct{}{}
			}
		}
	}
}

// WithArtifactsDir enables artifact lookup and constructor argument encoding.
func WithArtifactsDir(dir string) Option {
	return func(b *Backend) { b.artifactsDir = dir }
}

// New creates a backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		deployer:  DefaultDeployer,
		artifacts: make(map[string]*Artifact),
		taken:     make(map[common.Address]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if n := uint64(len(b.taken)); b.nonce < n {
		b.nonce = n
	}
	return b
}

// Deployer returns the deploying account.
func (b *Backend) Deployer() common.Address {
	return b.deployer
}

// Deploy implements backend.Backend.
func (b *Backend) Deploy(ctx context.Context, artifact string, args []any) (backend.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger := ctxlog.FromContext(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	var code []byte
	if b.artifactsDir != "" {
		a, err := b.artifact(artifact)
		if err != nil {
			return "", err
		}
		if len(a.Bytecode) == 0 {
			return "", fmt.Errorf("artifact '%s' has no bytecode; abstract contracts and interfaces cannot be deployed", artifact)
		}
		packed, err := packConstructor(a, args)
		if err != nil {
			return "", err
		}
		code = append(append([]byte{}, a.Bytecode...), packed...)
	}

	addr := b.nextAddress()
	d := &Deployment{
		Artifact: artifact,
		Address:  addr,
		Nonce:    b.nonce,
		Args:     append([]any(nil), args...),
		Code:     code,
	}
	b.deployments = append(b.deployments, d)
	b.taken[addr] = struct{}{}
	b.nonce++

	logger.Debug("Simulated contract creation.", "artifact", artifact, "address", addr.Hex(), "nonce", d.Nonce, "code_size", len(code))
	return backend.Handle(addr.Hex()), nil
}

// nextAddress returns the CREATE address of the current nonce, first moving
// the nonce past addresses that are already taken. b.mu must be held.
func (b *Backend) nextAddress() common.Address {
	for {
		addr := crypto.CreateAddress(b.deployer, b.nonce)
		if _, taken := b.taken[addr]; !taken {
			return addr
		}
		b.nonce++
	}
}

// Nonce returns the nonce the next deployment will use.
func (b *Backend) Nonce() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonce
}

// Deployments returns the deployments made so far in call order.
func (b *Backend) Deployments() []*Deployment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Deployment(nil), b.deployments...)
}

// Lookup returns the deployment at the address behind h.
func (b *Backend) Lookup(h backend.Handle) (*Deployment, bool) {
	if !common.IsHexAddress(string(h)) {
		return nil, false
	}
	addr := common.HexToAddress(string(h))

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.deployments {
		if d.Address == addr {
			return d, true
		}
	}
	return nil, false
}

// artifact returns the cached artifact, loading it on first use. b.mu must be
// held.
func (b *Backend) artifact(name string) (*Artifact, error) {
	if a, ok := b.artifacts[name]; ok {
		return a, nil
	}
	if b.index == nil {
		index, err := indexArtifacts(b.artifactsDir)
		if err != nil {
			return nil, err
		}
		b.index = index
	}

	path, ok := b.index[name]
	if !ok {
		return nil, fmt.Errorf("artifact '%s' not found in %s", name, b.artifactsDir)
	}
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	b.artifacts[name] = a
	return a, nil
}
