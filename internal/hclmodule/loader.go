// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclmodule

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/specialistvlad/deploygridgo/internal/unitid"
)

// Loader parses module files. It caches parsed files so that diagnostics can
// point back at their source.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadFile parses a single .hcl file and returns the modules it declares.
func (l *Loader) LoadFile(path string) ([]*module.Module, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return l.decode(file, path)
}

// LoadSource parses in-memory HCL source. filename is only used in
// diagnostics and as the modules' source.
func (l *Loader) LoadSource(src []byte, filename string) ([]*module.Module, error) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return l.decode(file, filename)
}

func (l *Loader) decode(file *hcl.File, path string) ([]*module.Module, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	seen := make(map[string]struct{}, len(parsed.Modules))
	mods := make([]*module.Module, 0, len(parsed.Modules))
	for _, block := range parsed.Modules {
		if _, dup := seen[block.Name]; dup {
			return nil, fmt.Errorf("module '%s' declared more than once in %s", block.Name, path)
		}
		seen[block.Name] = struct{}{}

		decl, diags := newModuleDecl(block, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("error parsing module '%s' in file %s: %w", block.Name, path, diags)
		}
		mods = append(mods, module.New(decl.name, decl.build, module.WithSource(path)))
	}
	return mods, nil
}

// newModuleDecl checks the shape of a module block without evaluating any of
// its expressions.
func newModuleDecl(block *hclModule, path string) (*moduleDecl, hcl.Diagnostics) {
	decl := &moduleDecl{name: block.Name, file: path}

	content, diags := block.Body.Content(moduleBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	if err := unitid.ValidateName(block.Name); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid module name",
			Detail:   err.Error(),
			Subject:  block.Body.MissingItemRange().Ptr(),
		})
	}

	names := make(map[string]map[string]struct{})
	for _, b := range content.Blocks {
		name := b.Labels[0]
		if names[b.Type] == nil {
			names[b.Type] = make(map[string]struct{})
		}
		if _, dup := names[b.Type][name]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s \"%s\"", b.Type, name),
				Detail:   fmt.Sprintf("Only one %s block named \"%s\" is allowed per module.", b.Type, name),
				Subject:  &b.DefRange,
			})
			continue
		}
		names[b.Type][name] = struct{}{}

		var blockDiags hcl.Diagnostics
		switch b.Type {
		case "parameter":
			var p *paramDecl
			p, blockDiags = parseParameter(b)
			if p != nil {
				decl.params = append(decl.params, p)
			}
		case "contract", "contract_at":
			var u *unitDecl
			u, blockDiags = parseUnit(b)
			if u != nil {
				decl.units = append(decl.units, u)
			}
		case "output":
			var o *outputDecl
			o, blockDiags = parseOutput(b)
			if o != nil {
				decl.outputs = append(decl.outputs, o)
			}
		}
		diags = append(diags, blockDiags...)
	}

	// contract and contract_at share one namespace.
	for name := range names["contract_at"] {
		if _, clash := names["contract"][name]; clash {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate unit name",
				Detail:   fmt.Sprintf("Unit \"%s\" is declared both as contract and contract_at.", name),
				Subject:  block.Body.MissingItemRange().Ptr(),
			})
		}
	}

	return decl, diags
}

func parseParameter(b *hcl.Block) (*paramDecl, hcl.Diagnostics) {
	content, diags := b.Body.Content(parameterBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	p := &paramDecl{name: b.Labels[0]}
	if attr, ok := content.Attributes["default"]; ok {
		if len(attr.Expr.Variables()) > 0 {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid parameter default",
				Detail:   "A parameter default must be a constant value.",
				Subject:  attr.Expr.Range().Ptr(),
			})
		}
		p.def = attr.Expr
	}
	return p, diags
}

func parseUnit(b *hcl.Block) (*unitDecl, hcl.Diagnostics) {
	schema := contractBodySchema
	kind := module.KindContract
	if b.Type == "contract_at" {
		schema = contractAtBodySchema
		kind = module.KindContractAt
	}

	content, diags := b.Body.Content(schema)
	if diags.HasErrors() {
		return nil, diags
	}

	u := &unitDecl{name: b.Labels[0], kind: kind, defRange: b.DefRange}
	if err := unitid.ValidateName(u.name); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid unit name",
			Detail:   err.Error(),
			Subject:  &b.DefRange,
		})
	}

	if attr, ok := content.Attributes["artifact"]; ok {
		u.artifact = attr.Expr
	}
	if attr, ok := content.Attributes["address"]; ok {
		u.address = attr.Expr
	}
	if attr, ok := content.Attributes["args"]; ok {
		elems, listDiags := listElements(attr.Expr, "args")
		diags = append(diags, listDiags...)
		u.args = elems
	}
	if attr, ok := content.Attributes["after"]; ok {
		elems, listDiags := listElements(attr.Expr, "after")
		diags = append(diags, listDiags...)
		for _, elem := range elems {
			name, ok := unitReference(elem)
			if !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid after entry",
					Detail:   "Each entry of 'after' must be a unit reference like unit.token.",
					Subject:  elem.Range().Ptr(),
				})
				continue
			}
			u.after = append(u.after, name)
		}
	}

	return u, diags
}

func parseOutput(b *hcl.Block) (*outputDecl, hcl.Diagnostics) {
	content, diags := b.Body.Content(outputBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	expr := content.Attributes["value"].Expr
	name, ok := unitReference(expr)
	if !ok {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid output value",
			Detail:   "An output value must be a unit reference like unit.token.",
			Subject:  expr.Range().Ptr(),
		})
	}
	return &outputDecl{name: b.Labels[0], unit: name}, diags
}

// listElements requires expr to be a list literal and returns its elements.
func listElements(expr hcl.Expression, attrName string) ([]hcl.Expression, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	tuple, ok := expr.(*hclsyntax.TupleConsExpr)
	if !ok {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("Invalid %s value", attrName),
			Detail:   fmt.Sprintf("The '%s' attribute must be a list literal like [...].", attrName),
			Subject:  expr.Range().Ptr(),
		})
		return nil, diags
	}
	elems := make([]hcl.Expression, len(tuple.Exprs))
	for i, e := range tuple.Exprs {
		elems[i] = e
	}
	return elems, diags
}
