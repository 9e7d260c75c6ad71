// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package module defines the declarative model of a deployment module.
//
// A Module is a name plus a BuildFunc. Declaring a module has no side effects:
// the BuildFunc is only invoked when a run asks for a Plan, once per run, with
// a fresh Builder. The Builder collects deployment units and their edges:
//
//	mod := module.New("OpenMarketModule", func(m *module.Builder) error {
//		token := m.Contract("Token", module.Args("Open Token", "OPN"))
//		market := m.Contract("Openmarket", module.ID("nftMarket"), module.Args(token))
//		m.Output("market", market)
//		return nil
//	})
//
// Passing a Future as an argument creates a tagged reference, not a value. The
// reference is an implicit dependency edge and is replaced by the referenced
// unit's handle only at execution time, after the plan has been sorted.
package module
