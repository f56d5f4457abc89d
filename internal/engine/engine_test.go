package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
	"github.com/gyaneshwarpardhi/trafficmap/internal/engine"
	"github.com/gyaneshwarpardhi/trafficmap/internal/query"
)

const testMap = `
version: v-test
palettes:
  - name: default
    type: buckets
    buckets:
      - { up_to: 5, color: "#00ff00" }
      - { up_to: 10, color: "#ffff00" }
    overflow: "#ff0000"
  - { name: heat, type: gradient, from: "#000000", to: "#ffffff", max: 20 }
nodes:
  - { id: A, name: Alpha }
  - { id: B }
  - { id: C }
  - { id: D }
edges:
  - { source: A, target: B, weight: 5 }
  - { source: B, target: C, weight: 5 }
`

func buildMap(t *testing.T, src string) *engine.Map {
	t.Helper()
	cfg, err := config.Parse([]byte(src))
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))
	m, err := engine.BuildMap(cfg, nil)
	require.NoError(t, err)
	return m
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(context.Background(), buildMap(t, testMap), config.EngineConf{
		Workers:        2,
		QueueDepth:     16,
		QueryTimeoutMs: 2000,
	})
	t.Cleanup(e.Shutdown)
	return e
}

func TestRouteSync(t *testing.T) {
	e := newEngine(t)
	res, err := e.RouteSync(context.Background(), &query.Query{ID: "q1", Source: "A", Destination: "C"})
	require.NoError(t, err)

	assert.Equal(t, "q1", res.QueryID)
	assert.Equal(t, "medium", res.Traffic)
	assert.Equal(t, 1.0, res.Multiplier)
	assert.Equal(t, "default", res.Palette)
	assert.Equal(t, []string{"A", "B", "C"}, res.Path)
	require.NotNil(t, res.Distances["C"])
	assert.Equal(t, 10.0, *res.Distances["C"])
	assert.Nil(t, res.Distances["D"], "unreachable")
	assert.Equal(t, []string{}, res.Paths["D"])

	require.Len(t, res.Edges, 2)
	assert.Equal(t, "#00ff00", res.Edges[0].Color)
	assert.Equal(t, "#ffff00", res.Edges[1].Color)
	assert.True(t, res.Edges[1].OnPath)
	assert.Empty(t, res.Warnings)
}

func TestRoute_HighTrafficAndGradient(t *testing.T) {
	e := newEngine(t)
	res, err := e.Route(&query.Query{Source: "A", Destination: "C", Traffic: "HIGH", Palette: "heat"})
	require.NoError(t, err)
	assert.Equal(t, "high", res.Traffic)
	assert.Equal(t, "heat", res.Palette)
	assert.InDelta(t, 15.0, *res.Distances["C"], 1e-9)
	assert.InDelta(t, 15.0, res.Edges[1].ArrivalTime, 1e-9)
}

func TestRoute_Warnings(t *testing.T) {
	e := newEngine(t)

	res, err := e.Route(&query.Query{Source: "A", Palette: "neon"})
	require.NoError(t, err)
	assert.Equal(t, "default", res.Palette)
	assert.Contains(t, res.Warnings, `palette "neon" not found; using "default"`)

	res, err = e.Route(&query.Query{Source: "A", Destination: "Z"})
	require.NoError(t, err)
	assert.Empty(t, res.Destination)
	assert.Nil(t, res.Path)
	assert.Contains(t, res.Warnings, `destination "Z" not on map; ignored`)

	res, err = e.Route(&query.Query{Source: "A", Destination: "D"})
	require.NoError(t, err)
	assert.Equal(t, "D", res.Destination)
	assert.Nil(t, res.Path)
	assert.Contains(t, res.Warnings, `no route from "A" to "D"`)
	for _, ce := range res.Edges {
		assert.False(t, ce.OnPath)
	}
}

func TestRoute_Errors(t *testing.T) {
	e := newEngine(t)

	_, err := e.RouteSync(context.Background(), &query.Query{Source: "Z"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnknownSource))

	_, err = e.Route(&query.Query{Source: "A", Traffic: "rush"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, query.ErrInvalid))
}

func TestRouteBatch_KeepsOrderAndPerItemErrors(t *testing.T) {
	e := newEngine(t)
	items := e.RouteBatch(context.Background(), []*query.Query{
		{ID: "1", Source: "A", Destination: "C"},
		{ID: "2", Source: "nowhere"},
		{ID: "3", Source: "C", Destination: "A", Traffic: "low"},
	})
	require.Len(t, items, 3)

	assert.Equal(t, "1", items[0].QueryID)
	require.NotNil(t, items[0].Result)
	assert.Equal(t, []string{"A", "B", "C"}, items[0].Result.Path)

	assert.Equal(t, "2", items[1].QueryID)
	assert.Nil(t, items[1].Result)
	assert.Contains(t, items[1].Error, "unknown source")

	require.NotNil(t, items[2].Result)
	assert.Equal(t, []string{"C", "B", "A"}, items[2].Result.Path)
	assert.InDelta(t, 8.0, *items[2].Result.Distances["A"], 1e-9)
}

func TestRouteSync_CancelledContext(t *testing.T) {
	e := engine.New(context.Background(), buildMap(t, testMap), config.EngineConf{
		Workers: 1, QueueDepth: 4, QueryTimeoutMs: 2000,
	})
	t.Cleanup(e.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RouteSync(ctx, &query.Query{Source: "A"})
	// The worker may win the race against the cancelled context.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSwapMap(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "v-test", e.Map().Version)

	next := buildMap(t, `
version: v-next
nodes: [{ id: A }, { id: E }]
edges: [{ source: A, target: E, weight: 1 }]
`)
	e.SwapMap(next)
	assert.Same(t, next, e.Map())

	res, err := e.RouteSync(context.Background(), &query.Query{Source: "A", Destination: "E"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "E"}, res.Path)

	_, err = e.Route(&query.Query{Source: "A", Destination: "C"})
	require.NoError(t, err, "old destination is ignored, not fatal")
}

func TestBuildMap_Errors(t *testing.T) {
	cfg, err := config.Parse([]byte(testMap))
	require.NoError(t, err)
	cfg.Edges = append(cfg.Edges, config.EdgeDef{Source: "A", Target: "ghost", Weight: 1})
	_, err = engine.BuildMap(cfg, nil)
	assert.Error(t, err)

	cfg, err = config.Parse([]byte(testMap))
	require.NoError(t, err)
	cfg.DefaultPalette = "nope"
	_, err = engine.BuildMap(cfg, nil)
	assert.Error(t, err)
}

func TestQueueUtilization(t *testing.T) {
	e := newEngine(t)
	u := e.QueueUtilization()
	assert.GreaterOrEqual(t, u, 0.0)
	assert.LessOrEqual(t, u, 1.0)
}

func TestRouteSync_AfterShutdown(t *testing.T) {
	e := engine.New(context.Background(), buildMap(t, testMap), config.EngineConf{
		Workers: 1, QueueDepth: 4, QueryTimeoutMs: 2000,
	})
	e.Shutdown()

	_, err := e.RouteSync(context.Background(), &query.Query{Source: "A"})
	assert.ErrorIs(t, err, engine.ErrShuttingDown)
	items := e.RouteBatch(context.Background(), []*query.Query{{ID: "late", Source: "A"}})
	require.Len(t, items, 1)
	assert.Equal(t, engine.ErrShuttingDown.Error(), items[0].Error)
}
