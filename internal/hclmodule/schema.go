// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclmodule

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/deploygridgo/internal/module"
)

// hclFile is the top-level structure of a module file for decoding.
type hclFile struct {
	Modules []*hclModule `hcl:"module,block"`
}

// hclModule is a single module block before its body is inspected.
type hclModule struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var moduleBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameter", LabelNames: []string{"name"}},
		{Type: "contract", LabelNames: []string{"name"}},
		{Type: "contract_at", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

var parameterBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "default"},
		{Name: "description"},
	},
}

var contractBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "artifact"},
		{Name: "args"},
		{Name: "after"},
	},
}

var contractAtBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "artifact"},
		{Name: "address", Required: true},
		{Name: "after"},
	},
}

var outputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value", Required: true},
	},
}

// moduleDecl is the statically checked content of a module block.
type moduleDecl struct {
	name    string
	file    string
	params  []*paramDecl
	units   []*unitDecl
	outputs []*outputDecl
}

type paramDecl struct {
	name string
	// def is nil when the parameter has no default and must be supplied.
	def hcl.Expression
}

type unitDecl struct {
	name     string
	kind     module.Kind
	artifact hcl.Expression
	address  hcl.Expression
	args     []hcl.Expression
	after    []string
	defRange hcl.Range
}

type outputDecl struct {
	name string
	unit string
}
