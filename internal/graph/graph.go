package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownNode marks an edge endpoint that is not in the node set.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrDuplicateNode marks a node id registered twice.
	ErrDuplicateNode = errors.New("graph: duplicate node id")

	// ErrNegativeWeight marks an edge with a weight below zero.
	ErrNegativeWeight = errors.New("graph: negative edge weight")
)

// Graph holds nodes, edges and an incidence index.
// It is immutable once built; a reload builds a new Graph and swaps it atomically.
type Graph struct {
	nodes    []Node
	index    map[string]int   // node id → position in nodes
	edges    []Edge           // input order, parallel edges kept
	incident map[string][]int // node id → indexes into edges, input order
	dupes    []string
}

// New builds a Graph from nodes and edges, preserving both orders.
//
// Edges whose endpoints are not both known are kept in Edges() but left out of
// the incidence index, so no traversal ever reaches them. A repeated node id
// keeps its first definition; Validate reports it.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    make([]Node, 0, len(nodes)),
		index:    make(map[string]int, len(nodes)),
		edges:    make([]Edge, len(edges)),
		incident: make(map[string][]int, len(nodes)),
	}
	for _, n := range nodes {
		if _, ok := g.index[n.ID]; ok {
			g.dupes = append(g.dupes, n.ID)
			continue
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	copy(g.edges, edges)
	for i, e := range g.edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		g.incident[e.Source] = append(g.incident[e.Source], i)
		if e.Target != e.Source {
			g.incident[e.Target] = append(g.incident[e.Target], i)
		}
	}
	return g
}

// Nodes returns the nodes in input order. The slice must not be modified.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Edges returns the edges in input order. The slice must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Incident returns the indexes of edges touching id, in input order.
func (g *Graph) Incident(id string) []int {
	return g.incident[id]
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, including ones with unknown endpoints.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Validate reports duplicate node ids, dangling edge endpoints and negative weights.
func (g *Graph) Validate() error {
	var errs []error
	for _, id := range g.dupes {
		errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateNode, id))
	}
	for i, e := range g.edges {
		for _, id := range []string{e.Source, e.Target} {
			if !g.HasNode(id) {
				errs = append(errs, fmt.Errorf("edges[%d]: %w %q", i, ErrUnknownNode, id))
			}
		}
		if e.Weight < 0 {
			errs = append(errs, fmt.Errorf("edges[%d] %s-%s: %w (%g)", i, e.Source, e.Target, ErrNegativeWeight, e.Weight))
		}
	}
	return errors.Join(errs...)
}

// String renders a compact summary, mostly for logs.
func (g *Graph) String() string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return fmt.Sprintf("graph{nodes=[%s] edges=%d}", strings.Join(ids, ","), len(g.edges))
}
