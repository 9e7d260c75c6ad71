// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

// UnitOption configures a unit at declaration time.
type UnitOption func(*unitConfig)

type unitConfig struct {
	builder *Builder
	id      string
	args    []Arg
	after   []string
}

// ID overrides the unit name, which otherwise defaults to the artifact name.
func ID(id string) UnitOption {
	return func(c *unitConfig) { c.id = id }
}

// Args sets the ordered constructor arguments. A *Future becomes a reference
// to that unit; an Arg is used as is; anything else is a literal.
func Args(args ...any) UnitOption {
	return func(c *unitConfig) {
		for _, raw := range args {
			c.args = append(c.args, c.toArg(raw))
		}
	}
}

// After adds explicit dependencies that do not pass a value.
func After(futures ...*Future) UnitOption {
	return func(c *unitConfig) {
		for _, f := range futures {
			if f == nil {
				c.builder.errorf("nil future passed to After")
				continue
			}
			if !c.checkModule(f) {
				continue
			}
			c.after = append(c.after, f.unit)
		}
	}
}

func (c *unitConfig) toArg(raw any) Arg {
	switch v := raw.(type) {
	case *Future:
		if v == nil {
			c.builder.errorf("nil future passed as argument")
			return Literal(nil)
		}
		c.checkModule(v)
		return Reference(v.unit)
	case Arg:
		return v
	default:
		return Literal(v)
	}
}

func (c *unitConfig) checkModule(f *Future) bool {
	if f.module != c.builder.module {
		c.builder.errorf("future '%s' belongs to module '%s', not '%s'", f.unit, f.module, c.builder.module)
		return false
	}
	return true
}
