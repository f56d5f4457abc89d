package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Validate checks the config for:
//   - Required fields and duplicate node ids
//   - Edge endpoints that reference unknown nodes, and negative weights
//   - Non-positive traffic multipliers and unknown traffic levels
//   - Palette shape: unique names, known type, ascending buckets, parseable colors
func Validate(cfg *MapConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	ids := make(map[string]int) // id → index
	for i, n := range cfg.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Sprintf("nodes[%d]: id is required", i))
			continue
		}
		if prev, ok := ids[n.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate node id %q (first seen at nodes[%d], again at nodes[%d])", n.ID, prev, i))
			continue
		}
		ids[n.ID] = i
	}

	for i, e := range cfg.Edges {
		loc := fmt.Sprintf("edges[%d]", i)
		for _, end := range []struct{ field, id string }{{"source", e.Source}, {"target", e.Target}} {
			switch {
			case end.id == "":
				errs = append(errs, fmt.Sprintf("%s: %s is required", loc, end.field))
			default:
				if _, ok := ids[end.id]; !ok {
					errs = append(errs, fmt.Sprintf("%s: %s %q is not a known node", loc, end.field, end.id))
				}
			}
		}
		if e.Weight < 0 {
			errs = append(errs, fmt.Sprintf("%s: weight must be >= 0, got %g", loc, e.Weight))
		}
	}

	levels := make(map[string][]string, len(cfg.Traffic))
	for level, m := range cfg.Traffic {
		key := TrafficKey(level)
		switch key {
		case "low", "medium", "high":
			levels[key] = append(levels[key], level)
		default:
			errs = append(errs, fmt.Sprintf("traffic: unknown level %q", level))
		}
		if m <= 0 {
			errs = append(errs, fmt.Sprintf("traffic %s: multiplier must be > 0, got %g", level, m))
		}
	}

	for _, key := range []string{"low", "medium", "high"} {
		if names := levels[key]; len(names) > 1 {
			sort.Strings(names)
			errs = append(errs, fmt.Sprintf("traffic: level %s listed more than once (%s)", key, strings.Join(names, ", ")))
		}
	}

	if cfg.UnusedColor != "" {
		if _, err := colorful.Hex(cfg.UnusedColor); err != nil {
			errs = append(errs, fmt.Sprintf("unused_color: %q is not a hex color", cfg.UnusedColor))
		}
	}
	validatePalettes(cfg, &errs)

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validatePalettes(cfg *MapConfig, errs *[]string) {
	names := make(map[string]struct{}, len(cfg.Palettes))
	for i, p := range cfg.Palettes {
		if p.Name == "" {
			*errs = append(*errs, fmt.Sprintf("palettes[%d]: name is required", i))
			continue
		}
		loc := fmt.Sprintf("palette %s", p.Name)
		if _, ok := names[p.Name]; ok {
			*errs = append(*errs, fmt.Sprintf("duplicate palette name %q", p.Name))
		}
		names[p.Name] = struct{}{}

		switch p.Type {
		case "buckets":
			if len(p.Buckets) == 0 {
				*errs = append(*errs, fmt.Sprintf("%s: buckets must not be empty", loc))
			}
			for j, b := range p.Buckets {
				if j > 0 && b.UpTo <= p.Buckets[j-1].UpTo {
					*errs = append(*errs, fmt.Sprintf("%s.buckets[%d]: up_to %g must be greater than %g", loc, j, b.UpTo, p.Buckets[j-1].UpTo))
				}
				checkColor(loc+fmt.Sprintf(".buckets[%d]", j), b.Color, errs)
			}
			checkColor(loc+".overflow", p.Overflow, errs)
		case "gradient":
			checkColor(loc+".from", p.From, errs)
			checkColor(loc+".to", p.To, errs)
			if p.Max <= 0 {
				*errs = append(*errs, fmt.Sprintf("%s: max must be > 0, got %g", loc, p.Max))
			}
		default:
			*errs = append(*errs, fmt.Sprintf("%s: unknown type %q (want buckets or gradient)", loc, p.Type))
		}
	}
	if cfg.DefaultPalette != "" {
		if _, ok := names[cfg.DefaultPalette]; !ok {
			*errs = append(*errs, fmt.Sprintf("default_palette %q is not a configured palette", cfg.DefaultPalette))
		}
	}
}

func checkColor(loc, hex string, errs *[]string) {
	if hex == "" {
		*errs = append(*errs, fmt.Sprintf("%s: color is required", loc))
		return
	}
	if _, err := colorful.Hex(hex); err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not a hex color", loc, hex))
	}
}
