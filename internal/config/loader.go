package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers        = 8
	DefaultQueueDepth     = 1000
	DefaultQueryTimeoutMs = 2000
	DefaultUnusedColor    = "#9ca3af"
	DefaultPaletteName    = "default"
)

// Loader reads a YAML map file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *MapConfig
	onChange []func(*MapConfig)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file path.
func (l *Loader) Path() string {
	return l.path
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *MapConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*MapConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						// Keep serving the previous map.
						slog.Warn("config reload failed", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*MapConfig, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*MapConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

// Read re-reads the config file and makes it current without running the
// OnChange callbacks. Callers that apply the new config themselves use it.
func (l *Loader) Read() (*MapConfig, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) load() (*MapConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and applies defaults. It does not validate.
func Parse(data []byte) (*MapConfig, error) {
	var cfg MapConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every unset tunable.
func ApplyDefaults(cfg *MapConfig) {
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = DefaultWorkers
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = DefaultQueueDepth
	}
	if cfg.Engine.QueryTimeoutMs == 0 {
		cfg.Engine.QueryTimeoutMs = DefaultQueryTimeoutMs
	}
	normalizeTraffic(cfg)
	for level, m := range map[string]float64{"low": 0.8, "medium": 1.0, "high": 1.5} {
		if _, ok := cfg.Traffic[level]; !ok {
			cfg.Traffic[level] = m
		}
	}
	if cfg.UnusedColor == "" {
		cfg.UnusedColor = DefaultUnusedColor
	}
	if len(cfg.Palettes) == 0 {
		cfg.Palettes = []PaletteDef{DefaultPalette()}
	}
	if cfg.DefaultPalette == "" {
		cfg.DefaultPalette = cfg.Palettes[0].Name
	}
}

// TrafficKey is the canonical spelling of a traffic level name.
func TrafficKey(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

// normalizeTraffic rewrites level names to their canonical spelling. When two
// names collapse to the same level the map is left as written so Validate can
// report the conflict.
func normalizeTraffic(cfg *MapConfig) {
	if cfg.Traffic == nil {
		cfg.Traffic = map[string]float64{}
		return
	}
	out := make(map[string]float64, len(cfg.Traffic))
	for level, m := range cfg.Traffic {
		key := TrafficKey(level)
		if _, dup := out[key]; dup {
			return
		}
		out[key] = m
	}
	cfg.Traffic = out
}

// DefaultPalette is the five-step arrival-time palette used when none is configured.
func DefaultPalette() PaletteDef {
	return PaletteDef{
		Name: DefaultPaletteName,
		Type: "buckets",
		Buckets: []BucketDef{
			{UpTo: 5, Color: "#22c55e"},
			{UpTo: 10, Color: "#84cc16"},
			{UpTo: 15, Color: "#eab308"},
			{UpTo: 20, Color: "#f97316"},
		},
		Overflow: "#ef4444",
	}
}
