// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package hclmodule reads deployment modules declared in HCL files.
//
// A file contains one or more module blocks:
//
//	module "OpenMarketModule" {
//	  parameter "fee" {
//	    default = 250
//	  }
//
//	  contract "token" {
//	    artifact = "Token"
//	    args     = ["Open Token", "OPN"]
//	  }
//
//	  contract "nftMarket" {
//	    artifact = "Openmarket"
//	    args     = [unit.token, param.fee]
//	    after    = [unit.registry]
//	  }
//
//	  contract_at "registry" {
//	    artifact = "Registry"
//	    address  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
//	  }
//
//	  output "market" {
//	    value = unit.nftMarket
//	  }
//	}
//
// Loading only checks the shape of the file. Expressions are kept as
// hcl.Expression values and evaluated inside the module's build function, so
// parameter values are bound per run. A whole argument of the form
// `unit.<name>` becomes a module reference rather than a value.
package hclmodule
