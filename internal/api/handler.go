package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
	"github.com/gyaneshwarpardhi/trafficmap/internal/engine"
	"github.com/gyaneshwarpardhi/trafficmap/internal/graph"
	"github.com/gyaneshwarpardhi/trafficmap/internal/metrics"
	"github.com/gyaneshwarpardhi/trafficmap/internal/query"
)

const maxBatchSize = 50

// Reloader re-reads the map config from its source. Read must not trigger
// change callbacks: the handler builds and swaps the map itself.
type Reloader interface {
	Read() (*config.MapConfig, error)
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader Reloader
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
// loader may be nil, in which case POST /v1/map/reload answers 501.
func New(eng *engine.Engine, loader Reloader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{eng: eng, loader: loader, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/routes", h.route)
	h.mux.HandleFunc("POST /v1/routes/batch", h.routeBatch)
	h.mux.HandleFunc("GET /v1/map", h.describeMap)
	h.mux.HandleFunc("POST /v1/map/reload", h.reloadMap)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(logger, h.mux)
}

// POST /v1/routes: synchronous single query.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	var q query.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if err := query.Validate(&q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	q.ReceivedAt = time.Now()

	res, err := h.eng.RouteSync(r.Context(), &q)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/routes/batch: up to 50 queries answered together.
func (h *Handler) routeBatch(w http.ResponseWriter, r *http.Request) {
	var qs []*query.Query
	if err := json.NewDecoder(r.Body).Decode(&qs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(qs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one query")
		return
	}
	if len(qs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(qs), maxBatchSize))
		return
	}

	now := time.Now()
	valid := make([]*query.Query, 0, len(qs))
	rejected := make(map[int]string)
	for i, q := range qs {
		if err := query.Validate(q); err != nil {
			rejected[i] = err.Error()
			continue
		}
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.ReceivedAt = now
		valid = append(valid, q)
	}

	answered := h.eng.RouteBatch(r.Context(), valid)
	items := make([]engine.BatchItem, 0, len(qs))
	failed := 0
	for i := range qs {
		if msg, ok := rejected[i]; ok {
			failed++
			it := engine.BatchItem{Error: msg}
			if qs[i] != nil {
				it.QueryID = qs[i].ID
			}
			items = append(items, it)
			continue
		}
		it := answered[0]
		answered = answered[1:]
		if it.Error != "" {
			failed++
		}
		items = append(items, it)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": uuid.New().String(),
		"total":    len(qs),
		"failed":   failed,
		"items":    items,
	})
}

type mapView struct {
	Version  string             `json:"version"`
	Nodes    []graph.Node       `json:"nodes"`
	Edges    []graph.Edge       `json:"edges"`
	Traffic  map[string]float64 `json:"traffic"`
	Palettes []string           `json:"palettes"`
}

// GET /v1/map: the active map.
func (h *Handler) describeMap(w http.ResponseWriter, r *http.Request) {
	m := h.eng.Map()
	traffic := make(map[string]float64, len(graph.TrafficLevels))
	for _, l := range graph.TrafficLevels {
		traffic[l.String()] = m.Annotator.Traffic.Multiplier(l)
	}
	writeJSON(w, http.StatusOK, mapView{
		Version:  m.Version,
		Nodes:    m.Graph.Nodes(),
		Edges:    m.Graph.Edges(),
		Traffic:  traffic,
		Palettes: m.Palettes.Names(),
	})
}

// POST /v1/map/reload: re-read the map from disk and swap it in.
func (h *Handler) reloadMap(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusNotImplemented, "map reload is not configured")
		return
	}
	cfg, err := h.loader.Read()
	if err != nil {
		metrics.MapReloads.WithLabelValues("read_error").Inc()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		metrics.MapReloads.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	m, err := engine.BuildMap(cfg, h.logger)
	if err != nil {
		metrics.MapReloads.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.eng.SwapMap(m)
	metrics.MapReloads.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  m.Version,
		"nodes":    m.Graph.NodeCount(),
		"edges":    m.Graph.EdgeCount(),
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if query queue >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrShuttingDown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
