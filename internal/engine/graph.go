package engine

import (
	"fmt"

	"github.com/picklr-io/clockwork/internal/ir"
)

// UseGraph is the directed graph of components and the sub-assemblies they use.
type UseGraph struct {
	names []string // declaration order
	nodes map[string]*useNode
	order []string // leaf-first order
}

type useNode struct {
	name     string
	edges    []string // components this one uses
	revEdges []string // components using this one
}

// BuildUseGraph constructs the use graph of a program. It fails when a use
// names an unknown component or when components use each other in a cycle.
func BuildUseGraph(program *ir.Program) (*UseGraph, error) {
	g := &UseGraph{
		nodes: make(map[string]*useNode),
	}

	for _, c := range program.Components {
		g.names = append(g.names, c.Name)
		g.nodes[c.Name] = &useNode{name: c.Name}
	}

	for _, c := range program.Components {
		node := g.nodes[c.Name]
		seen := make(map[string]bool)
		for _, use := range c.Uses {
			dep, ok := g.nodes[use.Component]
			if !ok {
				return nil, fmt.Errorf("%w: %s (used by %s)", ErrComponentNotFound, use.Component, c.Name)
			}
			if seen[use.Component] {
				continue
			}
			seen[use.Component] = true
			node.edges = append(node.edges, use.Component)
			dep.revEdges = append(dep.revEdges, c.Name)
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

// Order returns the components leaf first: every component comes after the
// components it uses.
func (g *UseGraph) Order() []string {
	return g.order
}

// Dependencies returns the components used by name.
func (g *UseGraph) Dependencies(name string) []string {
	if node, ok := g.nodes[name]; ok {
		return node.edges
	}
	return nil
}

// Dependents returns the components that use name.
func (g *UseGraph) Dependents(name string) []string {
	if node, ok := g.nodes[name]; ok {
		return node.revEdges
	}
	return nil
}

// topoSort performs Kahn's algorithm, seeding and releasing nodes in
// declaration order.
func (g *UseGraph) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	var queue []string
	for _, name := range g.names {
		inDegree[name] = len(g.nodes[name].edges)
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		sorted = append(sorted, name)

		for _, user := range g.nodes[name].revEdges {
			inDegree[user]--
			if inDegree[user] == 0 {
				queue = append(queue, user)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		var stuck []string
		for _, name := range g.names {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("%w: cycle among %v", ErrComponentCycle, stuck)
	}
	return sorted, nil
}
