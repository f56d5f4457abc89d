package annotate_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/trafficmap/internal/annotate"
	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
)

const unused = "gray"

// timeColor makes the arrival time visible in the color, so tests can see
// exactly which time the annotator passed in.
func timeColor(t float64) string {
	return fmt.Sprintf("t=%g", t)
}

func newAnnotator(buf *bytes.Buffer) *annotate.Annotator {
	a := annotate.New(unused)
	a.Logger = slog.New(slog.NewTextHandler(buf, nil))
	return a
}

func abc() *graph.Graph {
	return graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graph.Edge{
			{Source: "A", Target: "B", Weight: 5},
			{Source: "B", Target: "C", Weight: 5},
		},
	)
}

func TestAnnotate_HighlightsPathToDestination(t *testing.T) {
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(abc(), "A", graph.TrafficMedium, timeColor, "C")

	require.Len(t, edges, 2)
	assert.Equal(t, annotate.ColoredEdge{
		Edge: graph.Edge{Source: "A", Target: "B", Weight: 5}, Color: "t=5", ArrivalTime: 5, OnPath: true,
	}, edges[0])
	assert.Equal(t, annotate.ColoredEdge{
		Edge: graph.Edge{Source: "B", Target: "C", Weight: 5}, Color: "t=10", ArrivalTime: 10, OnPath: true,
	}, edges[1])
	assert.Empty(t, buf.String())
}

func TestAnnotate_HighTraffic(t *testing.T) {
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(abc(), "A", graph.TrafficHigh, timeColor, "C")

	assert.InDelta(t, 7.5, ann.Result.Distances["B"], 1e-9)
	assert.InDelta(t, 15, ann.Edges[1].ArrivalTime, 1e-9)
	assert.Equal(t, []string{"A", "B", "C"}, ann.Path)
	assert.Equal(t, []annotate.Segment{{From: "A", To: "B"}, {From: "B", To: "C"}}, ann.Segments)
}

func TestAnnotate_NoDestination(t *testing.T) {
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(abc(), "A", graph.TrafficMedium, timeColor, "")

	// Only the edge touching the source is colored.
	assert.Equal(t, annotate.ColoredEdge{
		Edge: graph.Edge{Source: "A", Target: "B", Weight: 5}, Color: "t=5", ArrivalTime: 5,
	}, edges[0])
	assert.Equal(t, annotate.ColoredEdge{
		Edge: graph.Edge{Source: "B", Target: "C", Weight: 5}, Color: unused, ArrivalTime: annotate.NotApplicable,
	}, edges[1])
	for _, e := range edges {
		assert.False(t, e.OnPath)
	}
}

func TestAnnotate_DestinationIsSource(t *testing.T) {
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(abc(), "A", graph.TrafficMedium, timeColor, "A")

	assert.Nil(t, ann.Path)
	assert.Equal(t, "A", ann.Destination)
	for _, e := range ann.Edges {
		assert.False(t, e.OnPath)
	}
	assert.Equal(t, 5.0, ann.Edges[0].ArrivalTime)
}

func TestAnnotate_UnreachableDestination(t *testing.T) {
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "D"}},
		[]graph.Edge{{Source: "A", Target: "B", Weight: 2}},
	)
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(g, "A", graph.TrafficMedium, timeColor, "D")

	assert.Nil(t, ann.Path)
	require.Len(t, ann.Edges, 1)
	assert.False(t, ann.Edges[0].OnPath)
	assert.Equal(t, 2.0, ann.Edges[0].ArrivalTime, "incident rule still applies")
}

func TestAnnotate_ReversedLabelsUseFartherEndpoint(t *testing.T) {
	// Both edges are stored against the direction of travel.
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graph.Edge{
			{Source: "B", Target: "A", Weight: 2},
			{Source: "C", Target: "B", Weight: 3},
		},
	)
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(g, "A", graph.TrafficMedium, timeColor, "C")

	assert.True(t, edges[0].OnPath)
	assert.Equal(t, 2.0, edges[0].ArrivalTime)
	assert.True(t, edges[1].OnPath)
	assert.Equal(t, 5.0, edges[1].ArrivalTime)
	assert.Equal(t, "C", edges[1].Source, "identity fields are untouched")
}

func TestAnnotate_OffPathEdgesStayNeutral(t *testing.T) {
	// A-B-C is the route; A-D touches the source; D-E is unrelated.
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "E"}},
		[]graph.Edge{
			{Source: "A", Target: "B", Weight: 1},
			{Source: "B", Target: "C", Weight: 1},
			{Source: "A", Target: "D", Weight: 4},
			{Source: "D", Target: "E", Weight: 1},
			{Source: "E", Target: "C", Weight: 9},
		},
	)
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(g, "A", graph.TrafficMedium, timeColor, "C")

	want := []struct {
		onPath  bool
		arrival float64
		color   string
	}{
		{true, 1, "t=1"},
		{true, 2, "t=2"},
		{false, 4, "t=4"},
		{false, annotate.NotApplicable, unused},
		{false, annotate.NotApplicable, unused},
	}
	require.Len(t, edges, len(want))
	for i, w := range want {
		assert.Equal(t, w.onPath, edges[i].OnPath, "edge %d", i)
		assert.Equal(t, w.arrival, edges[i].ArrivalTime, "edge %d", i)
		assert.Equal(t, w.color, edges[i].Color, "edge %d", i)
	}
}

func TestAnnotate_ParallelEdgesHighlightTraversedOnly(t *testing.T) {
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graph.Edge{
			{Source: "A", Target: "B", Weight: 9},
			{Source: "B", Target: "A", Weight: 2},
			{Source: "B", Target: "C", Weight: 1},
			{Source: "C", Target: "B", Weight: 1},
		},
	)
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(g, "A", graph.TrafficMedium, timeColor, "C")

	assert.False(t, edges[0].OnPath)
	assert.Equal(t, 2.0, edges[0].ArrivalTime, "slow parallel road still touches the source")
	assert.True(t, edges[1].OnPath)
	assert.True(t, edges[2].OnPath, "equal weights: first in input order")
	assert.False(t, edges[3].OnPath)
	assert.Equal(t, annotate.NotApplicable, edges[3].ArrivalTime)
	assert.Equal(t, edges[1].Key(), edges[0].Key())
}

func TestAnnotate_UnknownSourceFailsSoft(t *testing.T) {
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(abc(), "Z", graph.TrafficMedium, timeColor, "C")

	assert.NotNil(t, ann.Edges)
	assert.Empty(t, ann.Edges)
	assert.Nil(t, ann.Result)
	assert.Contains(t, buf.String(), "unknown source")
}

func TestAnnotate_NilGraphFailsSoft(t *testing.T) {
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(nil, "A", graph.TrafficMedium, timeColor, "")
	assert.Empty(t, edges)
	assert.Contains(t, buf.String(), "nil graph")
}

func TestAnnotate_UnknownDestinationIsReset(t *testing.T) {
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(abc(), "A", graph.TrafficMedium, timeColor, "Z")

	assert.Equal(t, "", ann.Destination)
	assert.Nil(t, ann.Path)
	require.Len(t, ann.Edges, 2)
	assert.Equal(t, 5.0, ann.Edges[0].ArrivalTime)
	assert.Equal(t, annotate.NotApplicable, ann.Edges[1].ArrivalTime)
	assert.Contains(t, buf.String(), "unknown destination")
}

func TestAnnotate_DanglingEdgeEmittedNeutral(t *testing.T) {
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}},
		[]graph.Edge{
			{Source: "A", Target: "ghost", Weight: 1},
			{Source: "A", Target: "B", Weight: 3},
		},
	)
	var buf bytes.Buffer
	edges := newAnnotator(&buf).Annotate(g, "A", graph.TrafficMedium, timeColor, "B")

	require.Len(t, edges, 2)
	assert.Equal(t, annotate.ColoredEdge{
		Edge: graph.Edge{Source: "A", Target: "ghost", Weight: 1}, Color: unused, ArrivalTime: annotate.NotApplicable,
	}, edges[0])
	assert.True(t, edges[1].OnPath)
	assert.Contains(t, buf.String(), "edge references unknown node")
}

func TestAnnotate_PreservesEdgeIdentityAndOrder(t *testing.T) {
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		[]graph.Edge{
			{Source: "D", Target: "C", Weight: 7},
			{Source: "C", Target: "A", Weight: 1},
			{Source: "B", Target: "A", Weight: 2},
			{Source: "B", Target: "D", Weight: 0.5},
		},
	)
	var buf bytes.Buffer
	a := newAnnotator(&buf)
	for _, level := range graph.TrafficLevels {
		for _, dest := range []string{"", "A", "B", "C", "D"} {
			edges := a.Annotate(g, "A", level, timeColor, dest)
			require.Len(t, edges, g.EdgeCount())
			for i, e := range edges {
				assert.Equal(t, g.Edges()[i], e.Edge)
				if dest == "" || dest == "A" {
					assert.False(t, e.OnPath)
				}
			}
		}
	}
}

func TestAnnotate_CustomTrafficTable(t *testing.T) {
	var buf bytes.Buffer
	a := newAnnotator(&buf)
	a.Traffic = graph.TrafficTable{graph.TrafficHigh: 3}
	edges := a.Annotate(abc(), "A", graph.TrafficHigh, timeColor, "C")
	assert.Equal(t, "t=30", edges[1].Color)
}

func TestAnnotate_ZeroWeightPathEdgeArrivesAtSegmentEnd(t *testing.T) {
	// B and C share a distance, so only the direction of travel picks the arrival end.
	g := graph.New(
		[]graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graph.Edge{
			{Source: "A", Target: "B", Weight: 3},
			{Source: "C", Target: "B", Weight: 0},
		},
	)
	var buf bytes.Buffer
	ann := newAnnotator(&buf).Run(g, "A", graph.TrafficMedium, timeColor, "C")

	require.Equal(t, []string{"A", "B", "C"}, ann.Path)
	require.Equal(t, []annotate.Segment{{From: "A", To: "B"}, {From: "B", To: "C"}}, ann.Segments)
	assert.Equal(t, ann.Result.Distances["B"], ann.Result.Distances["C"])

	last := ann.Edges[1]
	assert.True(t, last.OnPath)
	assert.Equal(t, ann.Result.Distances[ann.Segments[1].To], last.ArrivalTime)
	assert.Equal(t, 3.0, last.ArrivalTime)
	assert.Equal(t, "t=3", last.Color)
	assert.Equal(t, "C", last.Source, "stored orientation is kept")
}
