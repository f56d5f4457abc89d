package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trafficmap_queries_enqueued_total",
		Help: "Total number of route queries placed on the processing queue.",
	})

	QueriesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficmap_queries_processed_total",
		Help: "Total number of route queries processed, labelled by traffic level.",
	}, []string{"traffic"})

	QueriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trafficmap_queries_dropped_total",
		Help: "Total number of route queries rejected due to a full queue.",
	})

	UnreachableDestinations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trafficmap_unreachable_destinations_total",
		Help: "Total number of queries whose destination had no route.",
	})

	AnnotationsDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficmap_annotations_degraded_total",
		Help: "Total number of annotator inputs handled in degraded mode, labelled by reason.",
	}, []string{"reason"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trafficmap_query_duration_ms",
		Help:    "Route computation plus annotation latency in milliseconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trafficmap_queue_utilization_ratio",
		Help: "Current query queue utilization (0–1).",
	})

	MapReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficmap_map_reloads_total",
		Help: "Total number of map reload attempts, labelled by outcome.",
	}, []string{"outcome"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trafficmap_graph_nodes",
		Help: "Number of nodes in the active map.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trafficmap_graph_edges",
		Help: "Number of edges in the active map.",
	})
)
