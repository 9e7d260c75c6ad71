// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package topology

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/deploygridgo/internal/module"
)

// CyclicDependencyError is returned when the units of a plan depend on each
// other in a loop. Cycle lists the units along the loop and repeats the first
// one at the end.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

type node struct {
	name string
	// deps and dependents keep declaration order for deterministic traversal.
	deps       []*node
	dependents []*node
}

// Graph is an immutable dependency graph over the units of one plan.
type Graph struct {
	nodes map[string]*node
	order []*node
}

// Build creates the graph for plan and checks it for cycles. Every dependency
// must name a unit of the plan; module.Build already guarantees that.
func Build(plan *module.Plan) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*node, len(plan.Units))}
	for _, u := range plan.Units {
		if _, ok := g.nodes[u.Name]; ok {
			return nil, fmt.Errorf("unit '%s' appears more than once in plan", u.Name)
		}
		n := &node{name: u.Name}
		g.nodes[u.Name] = n
		g.order = append(g.order, n)
	}

	for _, u := range plan.Units {
		to := g.nodes[u.Name]
		for _, dep := range u.Dependencies() {
			from, ok := g.nodes[dep]
			if !ok {
				return nil, &module.UnknownUnitError{Unit: u.Name, Referenced: dep}
			}
			to.deps = append(to.deps, from)
			from.dependents = append(from.dependents, to)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CyclicDependencyError{Cycle: cycle}
	}
	return g, nil
}

// findCycle runs a three-color depth-first search along dependency edges and
// returns the first loop it meets.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*node]int, len(g.order))
	var stack []*node

	var visit func(n *node) []string
	visit = func(n *node) []string {
		color[n] = grey
		stack = append(stack, n)
		for _, dep := range n.deps {
			switch color[dep] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				cycle := make([]string, 0, len(stack)-start+1)
				for _, s := range stack[start:] {
					cycle = append(cycle, s.name)
				}
				return append(cycle, dep.name)
			case white:
				if c := visit(dep); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return nil
	}

	for _, n := range g.order {
		if color[n] == white {
			if c := visit(n); c != nil {
				return c
			}
		}
	}
	return nil
}

// Len returns the number of units in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Sort returns the unit names so that every unit follows its dependencies.
// Ties are broken by declaration order.
func (g *Graph) Sort() []string {
	remaining := make(map[*node]int, len(g.order))
	for _, n := range g.order {
		remaining[n] = len(n.deps)
	}

	sorted := make([]string, 0, len(g.order))
	placed := make(map[*node]bool, len(g.order))
	for len(sorted) < len(g.order) {
		progressed := false
		for _, n := range g.order {
			if placed[n] || remaining[n] > 0 {
				continue
			}
			placed[n] = true
			sorted = append(sorted, n.name)
			for _, d := range n.dependents {
				remaining[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			// Unreachable for graphs produced by Build.
			panic("topology: graph contains a cycle")
		}
	}
	return sorted
}

// DependenciesOf returns the direct dependencies of unit in declaration order.
func (g *Graph) DependenciesOf(unit string) []string {
	n, ok := g.nodes[unit]
	if !ok {
		return nil
	}
	return names(n.deps)
}

// DependentsOf returns the units that depend directly on unit.
func (g *Graph) DependentsOf(unit string) []string {
	n, ok := g.nodes[unit]
	if !ok {
		return nil
	}
	return names(n.dependents)
}

// TransitiveDependentsOf returns every unit that depends on unit directly or
// indirectly, in declaration order.
func (g *Graph) TransitiveDependentsOf(unit string) []string {
	n, ok := g.nodes[unit]
	if !ok {
		return nil
	}
	seen := make(map[*node]bool)
	var walk func(*node)
	walk = func(n *node) {
		for _, d := range n.dependents {
			if !seen[d] {
				seen[d] = true
				walk(d)
			}
		}
	}
	walk(n)

	var out []string
	for _, m := range g.order {
		if seen[m] {
			out = append(out, m.name)
		}
	}
	return out
}

func names(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.name
	}
	return out
}
