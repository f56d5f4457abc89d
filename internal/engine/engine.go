package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/trafficmap/internal/annotate"
	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
	"github.com/gyaneshwarpardhi/trafficmap/internal/metrics"
	"github.com/gyaneshwarpardhi/trafficmap/internal/palette"
	"github.com/gyaneshwarpardhi/trafficmap/internal/query"
)

var (
	// ErrQueueFull is returned when the query queue has no free slot.
	ErrQueueFull = errors.New("engine: query queue full")

	// ErrTimeout is returned when a query is not answered within the configured timeout.
	ErrTimeout = errors.New("engine: query timed out")

	// ErrShuttingDown is returned for queries submitted after Shutdown.
	ErrShuttingDown = errors.New("engine: shutting down")

	// ErrUnknownSource is returned when the query's source is not on the active map.
	ErrUnknownSource = errors.New("engine: unknown source")
)

// Map bundles everything a query needs: the graph and the color/traffic policy
// built from the same config. It is immutable and swapped as a whole.
type Map struct {
	Version   string
	Graph     *graph.Graph
	Palettes  *palette.Registry
	Annotator *annotate.Annotator
}

// BuildMap assembles a Map from a validated config.
func BuildMap(cfg *config.MapConfig, logger *slog.Logger) (*Map, error) {
	g, err := graph.Build(cfg)
	if err != nil {
		return nil, err
	}
	traffic, err := graph.BuildTrafficTable(cfg)
	if err != nil {
		return nil, err
	}
	pals, err := palette.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Map{
		Version:  cfg.Version,
		Graph:    g,
		Palettes: pals,
		Annotator: &annotate.Annotator{
			Traffic:     traffic,
			UnusedColor: cfg.UnusedColor,
			Logger:      logger,
		},
	}, nil
}

// RouteResult is the outcome of a single query.
type RouteResult struct {
	QueryID     string                 `json:"query_id"`
	Source      string                 `json:"source"`
	Destination string                 `json:"destination,omitempty"`
	Traffic     string                 `json:"traffic"`
	Multiplier  float64                `json:"multiplier"`
	Palette     string                 `json:"palette"`
	Distances   map[string]*float64    `json:"distances"` // nil = unreachable
	Paths       map[string][]string    `json:"paths"`
	Path        []string               `json:"path,omitempty"`
	Edges       []annotate.ColoredEdge `json:"edges"`
	Warnings    []string               `json:"warnings,omitempty"`
	DurationMs  float64                `json:"duration_ms"`
}

// BatchItem pairs a query with either its result or its error.
type BatchItem struct {
	QueryID string       `json:"query_id"`
	Result  *RouteResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Engine answers route queries against the active Map.
type Engine struct {
	current atomic.Pointer[Map]
	pool    *workerPool[*routeWork]
	conf    config.EngineConf
}

type routeWork struct {
	q       *query.Query
	resultC chan routeOutcome
}

type routeOutcome struct {
	res *RouteResult
	err error
}

// New creates an Engine using conf and starts the worker pool.
func New(ctx context.Context, m *Map, conf config.EngineConf) *Engine {
	e := &Engine{conf: conf}
	e.SwapMap(m)
	e.pool = newWorkerPool[*routeWork](
		ctx,
		conf.Workers,
		conf.QueueDepth,
		func(_ context.Context, w *routeWork) {
			res, err := e.Route(w.q)
			w.resultC <- routeOutcome{res: res, err: err}
		},
	)
	return e
}

// SwapMap atomically replaces the active map (used on hot-reload).
func (e *Engine) SwapMap(m *Map) {
	e.current.Store(m)
	metrics.GraphNodes.Set(float64(m.Graph.NodeCount()))
	metrics.GraphEdges.Set(float64(m.Graph.EdgeCount()))
}

// Map returns the active map.
func (e *Engine) Map() *Map {
	return e.current.Load()
}

// RouteSync queues q and waits for its result.
func (e *Engine) RouteSync(ctx context.Context, q *query.Query) (*RouteResult, error) {
	w, err := e.submit(q)
	if err != nil {
		return nil, err
	}
	return e.await(ctx, w)
}

// RouteBatch queues every query and waits for all of them. Items keep input order.
// A full queue rejects the remaining items individually rather than the batch.
func (e *Engine) RouteBatch(ctx context.Context, qs []*query.Query) []BatchItem {
	items := make([]BatchItem, len(qs))
	works := make([]*routeWork, len(qs))
	for i, q := range qs {
		items[i].QueryID = q.ID
		w, err := e.submit(q)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		works[i] = w
	}
	for i, w := range works {
		if w == nil {
			continue
		}
		res, err := e.await(ctx, w)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Result = res
	}
	return items
}

func (e *Engine) submit(q *query.Query) (*routeWork, error) {
	w := &routeWork{q: q, resultC: make(chan routeOutcome, 1)}
	if !e.pool.Submit(w) {
		metrics.QueriesDropped.Inc()
		if e.pool.Closed() {
			return nil, ErrShuttingDown
		}
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.QueriesEnqueued.Inc()
	return w, nil
}

func (e *Engine) await(ctx context.Context, w *routeWork) (*RouteResult, error) {
	timeout := time.Duration(e.conf.QueryTimeoutMs) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-w.resultC:
		return out.res, out.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Route answers q on the calling goroutine against the active map.
func (e *Engine) Route(q *query.Query) (*RouteResult, error) {
	return e.current.Load().Route(q)
}

// Route answers q against m. The query should already have passed query.Validate.
func (m *Map) Route(q *query.Query) (*RouteResult, error) {
	start := time.Now()

	level, err := graph.ParseTrafficLevel(q.Traffic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", query.ErrInvalid, err)
	}

	result := &RouteResult{
		QueryID:     q.ID,
		Source:      q.Source,
		Destination: q.Destination,
		Traffic:     level.String(),
		Multiplier:  m.Annotator.Traffic.Multiplier(level),
	}

	pal, ok := m.Palettes.Resolve(q.Palette)
	if pal == nil {
		return nil, fmt.Errorf("engine: map %s has no palettes", m.Version)
	}
	if !ok {
		result.Warnings = append(result.Warnings, fmt.Sprintf("palette %q not found; using %q", q.Palette, pal.Name()))
	}
	result.Palette = pal.Name()

	ann := m.Annotator.Run(m.Graph, q.Source, level, palette.Func(pal), q.Destination)
	if ann.Result == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, q.Source)
	}
	if q.Destination != "" && ann.Destination == "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("destination %q not on map; ignored", q.Destination))
		result.Destination = ""
	}

	result.Distances = make(map[string]*float64, len(ann.Result.Distances))
	for id, d := range ann.Result.Distances {
		if !ann.Result.Distances.Reachable(id) {
			result.Distances[id] = nil
			continue
		}
		result.Distances[id] = &d
	}
	result.Paths = ann.Result.Paths
	result.Path = ann.Path
	result.Edges = ann.Edges

	if result.Destination != "" && result.Destination != q.Source && ann.Path == nil {
		metrics.UnreachableDestinations.Inc()
		result.Warnings = append(result.Warnings, fmt.Sprintf("no route from %q to %q", q.Source, result.Destination))
	}

	elapsed := time.Since(start)
	result.DurationMs = float64(elapsed.Microseconds()) / 1000
	metrics.QueriesProcessed.WithLabelValues(result.Traffic).Inc()
	metrics.QueryDuration.Observe(result.DurationMs)
	return result, nil
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
