// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModulesPath string // .hcl module files; optional
	Module      string // module to deploy

	ParametersPath string // JSON or YAML parameters file; optional
	StatePath      string // deployed_addresses.json file or directory; optional
	RedisAddr      string // shared state store; takes precedence over StatePath
	RedisKey       string

	ArtifactsPath string // compiled contract artifacts; optional
	Deployer      string // deploying account of the simulated chain

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("worker count cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.Deployer != "" && !common.IsHexAddress(cfg.Deployer) {
		return nil, fmt.Errorf("invalid deployer %q: must be a hex address", cfg.Deployer)
	}
	return &cfg, nil
}
