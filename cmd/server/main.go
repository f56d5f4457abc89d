package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/trafficmap/internal/api"
	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
	"github.com/gyaneshwarpardhi/trafficmap/internal/engine"
	"github.com/gyaneshwarpardhi/trafficmap/internal/metrics"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/map.yaml", "Path to map YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Build initial map ────────────────────────────────────────────────────
	m, err := engine.BuildMap(cfg, logger)
	if err != nil {
		slog.Error("failed to build map", "err", err)
		os.Exit(1)
	}
	slog.Info("map built", "version", m.Version, "nodes", m.Graph.NodeCount(), "edges", m.Graph.EdgeCount())
	slog.Debug("map graph", "graph", m.Graph.String())

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, m, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.MapConfig) {
		if err := config.Validate(newCfg); err != nil {
			metrics.MapReloads.WithLabelValues("invalid").Inc()
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		newMap, err := engine.BuildMap(newCfg, logger)
		if err != nil {
			metrics.MapReloads.WithLabelValues("invalid").Inc()
			slog.Warn("hot-reload skipped: map build failed", "err", err)
			return
		}
		eng.SwapMap(newMap)
		metrics.MapReloads.WithLabelValues("ok").Inc()
		slog.Info("map hot-reloaded", "version", newMap.Version, "nodes", newMap.Graph.NodeCount())
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, loader, logger)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown()
	cancel()
	slog.Info("goodbye")
}
