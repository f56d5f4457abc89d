package palette

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Gradient blends linearly (in Lab space) from one color at time 0 to another
// at Max. Times beyond Max are clamped.
type Gradient struct {
	name     string
	from, to colorful.Color
	max      float64
}

// NewGradient parses the two hex endpoints.
func NewGradient(name, from, to string, max float64) (*Gradient, error) {
	if max <= 0 {
		return nil, fmt.Errorf("palette %s: max must be > 0, got %g", name, max)
	}
	f, err := colorful.Hex(from)
	if err != nil {
		return nil, fmt.Errorf("palette %s: from: %w", name, err)
	}
	t, err := colorful.Hex(to)
	if err != nil {
		return nil, fmt.Errorf("palette %s: to: %w", name, err)
	}
	return &Gradient{name: name, from: f, to: t, max: max}, nil
}

func (g *Gradient) Name() string { return g.name }

func (g *Gradient) ColorFor(time float64) string {
	ratio := time / g.max
	switch {
	case ratio <= 0:
		return g.from.Hex()
	case ratio >= 1:
		return g.to.Hex()
	}
	return g.from.BlendLab(g.to, ratio).Clamped().Hex()
}
