package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gyaneshwarpardhi/trafficmap/internal/annotate"
	"github.com/gyaneshwarpardhi/trafficmap/internal/engine"
	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	pathStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
)

func nodeName(m *engine.Map, id string) string {
	if n, ok := m.Graph.Node(id); ok {
		return n.Name
	}
	return id
}

func formatTime(t float64) string {
	if t == annotate.NotApplicable {
		return "-"
	}
	return fmt.Sprintf("%.1f", t)
}

func formatDistance(d *float64) string {
	if d == nil {
		return "unreachable"
	}
	return fmt.Sprintf("%.1f", *d)
}

func renderRoute(m *engine.Map, res *engine.RouteResult) string {
	var b strings.Builder

	title := fmt.Sprintf("From %s · traffic %s (×%g) · palette %s",
		nodeName(m, res.Source), res.Traffic, res.Multiplier, res.Palette)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(res.Path) > 0 {
		names := make([]string, len(res.Path))
		for i, id := range res.Path {
			names[i] = nodeName(m, id)
		}
		dest := res.Path[len(res.Path)-1]
		b.WriteString(pathStyle.Render(fmt.Sprintf("Route: %s (%s)",
			strings.Join(names, " → "), formatDistance(res.Distances[dest]))))
		b.WriteString("\n\n")
	}

	// Roads sharing both endpoints are marked so the highlighted one stands out.
	roads := make(map[graph.EdgeKey]int, len(res.Edges))
	for _, e := range res.Edges {
		roads[e.Key()]++
	}

	b.WriteString(headStyle.Render(fmt.Sprintf("%-16s %-16s %7s %8s  %s", "FROM", "TO", "WEIGHT", "ARRIVAL", "COLOR")))
	b.WriteString("\n")
	for _, e := range res.Edges {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■■ " + e.Color)
		line := fmt.Sprintf("%-16s %-16s %7g %8s  %s",
			nodeName(m, e.Source), nodeName(m, e.Target), e.Weight, formatTime(e.ArrivalTime), swatch)
		if roads[e.Key()] > 1 {
			line += " ∥"
		}
		switch {
		case e.OnPath:
			line = pathStyle.Render(line + "  ◀ route")
		case e.ArrivalTime == annotate.NotApplicable:
			line = dimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, w := range res.Warnings {
		b.WriteString(warnStyle.Render("warning: " + w))
		b.WriteString("\n")
	}
	return b.String()
}

func renderComparison(m *engine.Map, results []*engine.RouteResult) string {
	var b strings.Builder
	if len(results) == 0 {
		return ""
	}
	b.WriteString(titleStyle.Render("Arrival times from " + nodeName(m, results[0].Source)))
	b.WriteString("\n")

	header := fmt.Sprintf("%-16s", "NODE")
	for _, r := range results {
		header += fmt.Sprintf(" %12s", fmt.Sprintf("%s ×%g", r.Traffic, r.Multiplier))
	}
	b.WriteString(headStyle.Render(header))
	b.WriteString("\n")

	for _, n := range m.Graph.Nodes() {
		row := fmt.Sprintf("%-16s", n.Name)
		for _, r := range results {
			row += fmt.Sprintf(" %12s", formatDistance(r.Distances[n.ID]))
		}
		if len(results[0].Path) > 0 && results[0].Path[len(results[0].Path)-1] == n.ID {
			row = pathStyle.Render(row + "  ◀ destination")
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
