// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package openmarket declares the marketplace deployment: a single Openmarket
// contract, unit id Openmarket, exposed as the output nftMarket.
package openmarket

import (
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/specialistvlad/deploygridgo/internal/registry"
)

// Name is the registry name of the module.
const Name = "OpenMarketModule"

// Module implements the registry.Provider interface for this package.
type Module struct{}

// Build declares the units of OpenMarketModule.
func Build(m *module.Builder) error {
	market := m.Contract("Openmarket")
	m.Output("nftMarket", market)
	return nil
}

// Register defines the module in r.
func (Module) Register(r *registry.Registry) {
	r.MustDefine(Name, Build)
}
