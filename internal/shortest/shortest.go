// Package shortest computes single-source shortest paths over an undirected
// graph whose edge weights are scaled by one traffic multiplier.
//
// The minimum unsettled node is found by a linear scan in node input order, so
// ties resolve to the node listed first and results are reproducible. Maps hold
// a few dozen nodes at most; a heap would buy nothing here.
//
// Preconditions (not checked): edge weights are >= 0 and the multiplier is > 0.
package shortest

import (
	"errors"
	"fmt"
	"math"

	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
)

// ErrInvalidInput is returned when the graph is nil or the source is not one of its nodes.
var ErrInvalidInput = errors.New("shortest: invalid input")

// Unreachable is the distance of a node no route reaches.
var Unreachable = math.Inf(1)

// DistanceMap maps node id → weighted distance from the source.
type DistanceMap map[string]float64

// Reachable reports whether id has a finite distance.
func (d DistanceMap) Reachable(id string) bool {
	v, ok := d[id]
	return ok && !math.IsInf(v, 1)
}

// PathMap maps node id → node ids from the source to that node, both inclusive.
// An empty path means no route exists.
type PathMap map[string][]string

// Result is the outcome of one computation. It shares nothing with the graph
// or with other results.
type Result struct {
	Source     string
	Multiplier float64
	Distances  DistanceMap
	Paths      PathMap

	// Via maps a reached node to the index (in Graph.Edges) of the edge that
	// last relaxed it. The source and unreachable nodes are absent.
	Via map[string]int

	// Order lists settled nodes in the order they were finalized.
	Order []string
}

// PathTo returns the path to id, or nil when none exists.
func (r *Result) PathTo(id string) []string {
	p := r.Paths[id]
	if len(p) == 0 {
		return nil
	}
	return p
}

// PathEdges returns the indexes of the edges traversed along the path to id,
// in travel order.
func (r *Result) PathEdges(id string) []int {
	p := r.PathTo(id)
	if len(p) < 2 {
		return nil
	}
	out := make([]int, 0, len(p)-1)
	for _, n := range p[1:] {
		out = append(out, r.Via[n])
	}
	return out
}

// Compute runs Dijkstra from sourceID with every edge weight multiplied by multiplier.
//
// Relaxation only overwrites on strict improvement, so among parallel edges the
// lightest wins and, on equal weight, the first in input order.
func Compute(g *graph.Graph, sourceID string, multiplier float64) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrInvalidInput)
	}
	if !g.HasNode(sourceID) {
		return nil, fmt.Errorf("%w: source %q not in graph", ErrInvalidInput, sourceID)
	}

	nodes := g.Nodes()
	edges := g.Edges()
	dist := make(DistanceMap, len(nodes))
	prev := make(map[string]string, len(nodes))
	via := make(map[string]int, len(nodes))
	settled := make(map[string]bool, len(nodes))
	order := make([]string, 0, len(nodes))

	for _, n := range nodes {
		dist[n.ID] = Unreachable
	}
	dist[sourceID] = 0

	for len(order) < len(nodes) {
		pick, best := -1, Unreachable
		for i, n := range nodes {
			if settled[n.ID] {
				continue
			}
			if d := dist[n.ID]; d < best {
				pick, best = i, d
			}
		}
		if pick < 0 {
			break // everything left is unreachable
		}
		current := nodes[pick].ID
		settled[current] = true
		order = append(order, current)

		for _, i := range g.Incident(current) {
			e := edges[i]
			next := e.Other(current)
			if settled[next] {
				continue
			}
			alt := best + e.Weight*multiplier
			if alt < dist[next] {
				dist[next] = alt
				prev[next] = current
				via[next] = i
			}
		}
	}

	paths := make(PathMap, len(nodes))
	for _, n := range nodes {
		paths[n.ID] = reconstructPath(prev, sourceID, n.ID)
	}

	return &Result{
		Source:     sourceID,
		Multiplier: multiplier,
		Distances:  dist,
		Paths:      paths,
		Via:        via,
		Order:      order,
	}, nil
}

// reconstructPath walks predecessor links back to the source and reverses them.
func reconstructPath(prev map[string]string, source, target string) []string {
	if target == source {
		return []string{source}
	}
	if _, ok := prev[target]; !ok {
		return []string{}
	}
	var path []string
	for at := target; ; {
		path = append(path, at)
		if at == source {
			break
		}
		at = prev[at]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
