package graph

import (
	"fmt"

	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
)

// Build constructs a Graph from a MapConfig.
// The config should already have passed config.Validate; Build re-checks the
// structural rules so a bad graph never reaches the engine.
func Build(cfg *config.MapConfig) (*Graph, error) {
	nodes := make([]Node, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		name := n.Name
		if name == "" {
			name = n.ID
		}
		nodes = append(nodes, Node{ID: n.ID, Name: name, X: n.X, Y: n.Y})
	}
	edges := make([]Edge, 0, len(cfg.Edges))
	for _, e := range cfg.Edges {
		edges = append(edges, Edge{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}
	g := New(nodes, edges)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}

// BuildTrafficTable resolves the config's level names into a TrafficTable.
// Levels missing from the config keep their default multiplier. Two names for
// the same level are rejected.
func BuildTrafficTable(cfg *config.MapConfig) (TrafficTable, error) {
	t := DefaultTrafficTable()
	seen := make(map[TrafficLevel]string, len(cfg.Traffic))
	for name, m := range cfg.Traffic {
		l, err := ParseTrafficLevel(name)
		if err != nil {
			return nil, err
		}
		if m <= 0 {
			return nil, fmt.Errorf("traffic %s: multiplier must be > 0, got %g", name, m)
		}
		if prev, dup := seen[l]; dup {
			return nil, fmt.Errorf("traffic: %q and %q both name level %s", prev, name, l)
		}
		seen[l] = name
		t[l] = m
	}
	return t, nil
}
