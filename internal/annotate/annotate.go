// Package annotate decorates every edge of a map with a display color, an
// arrival time and an on-path flag, from one shortest-path computation.
//
// Unlike package shortest, the annotator never fails: it sits behind a UI that
// may pass half-updated state during a re-render. Every degraded input is
// logged at Warn and counted, then handled in-band.
package annotate

import (
	"log/slog"

	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
	"github.com/gyaneshwarpardhi/trafficmap/internal/metrics"
	"github.com/gyaneshwarpardhi/trafficmap/internal/palette"
	"github.com/gyaneshwarpardhi/trafficmap/internal/shortest"
)

// NotApplicable is the arrival time of an edge that is neither on the
// highlighted path nor incident to the source.
const NotApplicable = -1.0

// ColoredEdge is an input edge plus its derived annotations.
type ColoredEdge struct {
	graph.Edge
	Color       string  `json:"color"`
	ArrivalTime float64 `json:"arrival_time"`
	OnPath      bool    `json:"on_path"`
}

// Segment is one directed step of the highlighted path.
type Segment struct {
	From string
	To   string
}

// Annotation is the full output of Run.
type Annotation struct {
	Edges []ColoredEdge

	// Result is the underlying computation; nil when the source was unknown.
	Result *shortest.Result

	// Destination is the destination actually used ("" when none or reset).
	Destination string

	// Path is the highlighted node sequence; nil when nothing is highlighted.
	Path []string

	// Segments are the directed steps of Path, in travel order.
	Segments []Segment
}

// Annotator holds the color and traffic configuration shared by all calls.
// Its methods do not mutate it and are safe for concurrent use.
type Annotator struct {
	Traffic     graph.TrafficTable
	UnusedColor string
	Logger      *slog.Logger
}

// New returns an Annotator with the default traffic table and logger.
func New(unusedColor string) *Annotator {
	return &Annotator{
		Traffic:     graph.DefaultTrafficTable(),
		UnusedColor: unusedColor,
		Logger:      slog.Default(),
	}
}

// Annotate returns one ColoredEdge per edge of g, in the same order.
// An empty destinationID means no destination. An unknown source yields an
// empty slice.
func (a *Annotator) Annotate(g *graph.Graph, sourceID string, level graph.TrafficLevel, colorFor palette.ColorFunc, destinationID string) []ColoredEdge {
	return a.Run(g, sourceID, level, colorFor, destinationID).Edges
}

// Run is Annotate that also returns the computation behind the colors.
func (a *Annotator) Run(g *graph.Graph, sourceID string, level graph.TrafficLevel, colorFor palette.ColorFunc, destinationID string) *Annotation {
	log := a.logger()
	if g == nil {
		log.Warn("annotate: nil graph")
		metrics.AnnotationsDegraded.WithLabelValues("nil_graph").Inc()
		return &Annotation{Edges: []ColoredEdge{}}
	}
	if !g.HasNode(sourceID) {
		log.Warn("annotate: unknown source, returning no edges", "source", sourceID)
		metrics.AnnotationsDegraded.WithLabelValues("unknown_source").Inc()
		return &Annotation{Edges: []ColoredEdge{}}
	}
	if destinationID != "" && !g.HasNode(destinationID) {
		log.Warn("annotate: unknown destination, ignoring it", "destination", destinationID)
		metrics.AnnotationsDegraded.WithLabelValues("unknown_destination").Inc()
		destinationID = ""
	}

	res, err := shortest.Compute(g, sourceID, a.Traffic.Multiplier(level))
	if err != nil {
		// Unreachable given the checks above; kept so a future precondition cannot panic the caller.
		log.Warn("annotate: shortest path failed", "source", sourceID, "err", err)
		metrics.AnnotationsDegraded.WithLabelValues("compute_failed").Inc()
		return &Annotation{Edges: []ColoredEdge{}}
	}

	out := &Annotation{Result: res, Destination: destinationID}
	onPath := make(map[int]Segment)
	if destinationID != "" {
		if path := res.PathTo(destinationID); len(path) > 1 {
			out.Path = path
			for i, ei := range res.PathEdges(destinationID) {
				s := Segment{From: path[i], To: path[i+1]}
				out.Segments = append(out.Segments, s)
				onPath[ei] = s
			}
		}
	}

	edges := g.Edges()
	out.Edges = make([]ColoredEdge, len(edges))
	for i, e := range edges {
		ce := ColoredEdge{Edge: e, Color: a.UnusedColor, ArrivalTime: NotApplicable}
		switch {
		case !g.HasNode(e.Source) || !g.HasNode(e.Target):
			log.Warn("annotate: edge references unknown node, left neutral",
				"index", i, "source", e.Source, "target", e.Target)
			metrics.AnnotationsDegraded.WithLabelValues("dangling_edge").Inc()
		case hasSegment(onPath, i):
			// The arrival endpoint is the one the path travels toward.
			ce.OnPath = true
			ce.ArrivalTime = res.Distances[onPath[i].To]
			ce.Color = colorFor(ce.ArrivalTime)
		case e.Touches(sourceID):
			ce.ArrivalTime = res.Distances[e.Other(sourceID)]
			ce.Color = colorFor(ce.ArrivalTime)
		}
		out.Edges[i] = ce
	}
	return out
}

func hasSegment(m map[int]Segment, i int) bool {
	_, ok := m[i]
	return ok
}

func (a *Annotator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
