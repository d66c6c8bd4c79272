package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
	}
}

// Roots returns all nodes with no dependencies, sorted by ID for
// deterministic scheduling.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes {
		if len(n.Deps) == 0 {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// Levels returns the topological levels of the graph: level 0 holds the
// roots, level n holds nodes whose longest dependency chain has length n.
// Used by `plan` to show the execution order without running anything.
func (g *Graph) Levels() [][]string {
	depth := make(map[string]int, len(g.Nodes))

	var resolve func(n *Node, stack map[string]bool) int
	resolve = func(n *Node, stack map[string]bool) int {
		if d, ok := depth[n.ID]; ok {
			return d
		}
		if stack[n.ID] {
			// Cycles are reported by detectCycles; avoid infinite recursion here.
			return 0
		}
		stack[n.ID] = true
		d := 0
		for _, dep := range n.Deps {
			if dd := resolve(dep, stack) + 1; dd > d {
				d = dd
			}
		}
		delete(stack, n.ID)
		depth[n.ID] = d
		return d
	}

	maxDepth := 0
	for _, n := range g.Nodes {
		if d := resolve(n, map[string]bool{}); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for id, d := range depth {
		levels[d] = append(levels[d], id)
	}
	for _, level := range levels {
		sort.Strings(level)
	}
	return levels
}

// detectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) detectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and known to be safe.
	// temporary: currently in the recursion stack.
	// unvisited: everything else.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}

		temporary[n.ID] = true

		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.ID)
		permanent[n.ID] = true

		return nil
	}

	// Iterate in sorted order so cycle errors are deterministic.
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !permanent[id] {
			if err := visit(g.Nodes[id]); err != nil {
				return err
			}
		}
	}

	return nil
}
