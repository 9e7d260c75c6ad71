// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclmodule

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// build is the BuildFunc of a file-declared module. Expressions are evaluated
// here, once per run, against that run's parameters.
func (d *moduleDecl) build(m *module.Builder) error {
	ctx, err := d.evalContext(m)
	if err != nil {
		return err
	}

	for _, u := range d.units {
		if err := d.declareUnit(m, ctx, u); err != nil {
			m.Errorf("%v", err)
		}
	}
	for _, o := range d.outputs {
		m.Output(o.name, m.Ref(o.unit))
	}
	return nil
}

// evalContext resolves every declared parameter and exposes them as param.*.
func (d *moduleDecl) evalContext(m *module.Builder) (*hcl.EvalContext, error) {
	vals := make(map[string]cty.Value, len(d.params))
	for _, p := range d.params {
		var raw any
		if p.def == nil {
			raw = m.Parameter(p.name)
		} else {
			def, diags := p.def.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: parameter '%s' default: %w", d.file, p.name, diags)
			}
			defNative, err := ctyToNative(def)
			if err != nil {
				return nil, fmt.Errorf("%s: parameter '%s' default: %w", d.file, p.name, err)
			}
			raw = m.Parameter(p.name, defNative)
		}

		v, err := nativeToCty(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter '%s': %w", d.file, p.name, err)
		}
		vals[p.name] = v
	}

	params := cty.EmptyObjectVal
	if len(vals) > 0 {
		params = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"param": params}}, nil
}

func (d *moduleDecl) declareUnit(m *module.Builder, ctx *hcl.EvalContext, u *unitDecl) error {
	artifact := u.name
	if u.artifact != nil {
		s, err := evalString(ctx, u.artifact)
		if err != nil {
			return fmt.Errorf("%s: unit '%s' artifact: %w", u.defRange, u.name, err)
		}
		artifact = s
	}

	args := make([]any, 0, len(u.args))
	for i, expr := range u.args {
		if name, ok := unitReference(expr); ok {
			args = append(args, m.Ref(name))
			continue
		}
		if err := rejectNestedUnitRefs(expr); err != nil {
			return fmt.Errorf("%s: unit '%s' argument %d: %w", expr.Range(), u.name, i, err)
		}
		val, diags := expr.Value(ctx)
		if diags.HasErrors() {
			return fmt.Errorf("unit '%s' argument %d: %w", u.name, i, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return fmt.Errorf("%s: unit '%s' argument %d: %w", expr.Range(), u.name, i, err)
		}
		args = append(args, module.Literal(native))
	}

	after := make([]*module.Future, 0, len(u.after))
	for _, name := range u.after {
		after = append(after, m.Ref(name))
	}

	opts := []module.UnitOption{module.ID(u.name), module.Args(args...), module.After(after...)}
	switch u.kind {
	case module.KindContractAt:
		address, err := evalString(ctx, u.address)
		if err != nil {
			return fmt.Errorf("%s: unit '%s' address: %w", u.defRange, u.name, err)
		}
		m.ContractAt(artifact, address, opts...)
	default:
		m.Contract(artifact, opts...)
	}
	return nil
}

func evalString(ctx *hcl.EvalContext, expr hcl.Expression) (string, error) {
	if err := rejectNestedUnitRefs(expr); err != nil {
		return "", err
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return "", diags
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("expected a string: %w", err)
	}
	if str.IsNull() || !str.IsKnown() {
		return "", fmt.Errorf("expected a non-null string")
	}
	return str.AsString(), nil
}

// unitReference reports whether expr is exactly unit.<name>.
func unitReference(expr hcl.Expression) (string, bool) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 2 || trav.RootName() != "unit" {
		return "", false
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

// rejectNestedUnitRefs fails when a unit reference is used inside a larger
// expression. Handles only exist after deployment, so they can only be passed
// through whole.
func rejectNestedUnitRefs(expr hcl.Expression) error {
	var nested []string
	for _, v := range expr.Variables() {
		if v.RootName() == "unit" {
			nested = append(nested, strings.TrimSpace(string(hclwrite.TokensForTraversal(v).Bytes())))
		}
	}
	if len(nested) > 0 {
		return fmt.Errorf("unit references must be used as whole arguments, found %s", strings.Join(nested, ", "))
	}
	return nil
}
