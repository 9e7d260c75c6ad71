// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package simbackend is an in-process deployment backend that behaves like an
// EVM chain without talking to one.
//
// Every Deploy assigns the address a CREATE transaction from the deployer
// account would get (keccak256(rlp(deployer, nonce))[12:]) and increments the
// nonce, so runs against a fresh backend always yield the same addresses.
// Handles recorded by earlier runs are passed in with WithDeployed; new
// deployments continue after them and never reuse their addresses.
//
// Nonces follow the order of Deploy calls. The executor runs independent units
// concurrently, so with more than one worker two independent units may swap
// addresses between otherwise identical runs. A single worker deploys in plan
// order and makes the assignment reproducible per module.
//
// When an artifacts directory is configured, each artifact must exist there
// as a compiled contract JSON file with "abi" and "bytecode" fields, and the
// constructor arguments are checked and ABI-encoded against it. Without one,
// any artifact name is accepted and the arguments are only recorded.
package simbackend
