package palette

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/trafficmap/internal/config"
)

// Registry maps palette names to palettes.
// It is safe for concurrent reads; Register should only be called while building.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]Palette
	fallback string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{palettes: make(map[string]Palette)}
}

// Register adds a palette. Panics on duplicate name to surface misconfiguration early.
// The first registered palette becomes the fallback until SetDefault is called.
func (r *Registry) Register(p Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.palettes[p.Name()]; exists {
		panic(fmt.Sprintf("palette registry: duplicate name %q", p.Name()))
	}
	r.palettes[p.Name()] = p
	if r.fallback == "" {
		r.fallback = p.Name()
	}
}

// SetDefault selects the palette Resolve falls back to.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.palettes[name]; !ok {
		return fmt.Errorf("no palette registered under %q", name)
	}
	r.fallback = name
	return nil
}

// Get returns the palette with the given name.
func (r *Registry) Get(name string) (Palette, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[name]
	if !ok {
		return nil, fmt.Errorf("no palette registered under %q", name)
	}
	return p, nil
}

// Resolve returns the named palette, or the default one when name is empty or unknown.
// ok is false only when the fallback was used for a non-empty name.
func (r *Registry) Resolve(name string) (p Palette, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, found := r.palettes[name]; found {
		return p, true
	}
	return r.palettes[r.fallback], name == ""
}

// Names returns all registered palette names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.palettes))
	for k := range r.palettes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FromConfig builds a Registry holding every configured palette.
func FromConfig(cfg *config.MapConfig) (*Registry, error) {
	r := NewRegistry()
	for _, def := range cfg.Palettes {
		p, err := fromDef(def)
		if err != nil {
			return nil, err
		}
		if _, err := r.Get(def.Name); err == nil {
			return nil, fmt.Errorf("palette %s: defined twice", def.Name)
		}
		r.Register(p)
	}
	if len(cfg.Palettes) == 0 {
		p, err := fromDef(config.DefaultPalette())
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	if cfg.DefaultPalette != "" {
		if err := r.SetDefault(cfg.DefaultPalette); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func fromDef(def config.PaletteDef) (Palette, error) {
	switch def.Type {
	case "buckets":
		bs := make([]Bucket, len(def.Buckets))
		for i, b := range def.Buckets {
			bs[i] = Bucket{UpTo: b.UpTo, Color: b.Color}
		}
		return NewBuckets(def.Name, bs, def.Overflow)
	case "gradient":
		return NewGradient(def.Name, def.From, def.To, def.Max)
	default:
		return nil, fmt.Errorf("palette %s: unknown type %q", def.Name, def.Type)
	}
}
