// Package palette maps arrival times to color tokens.
//
// Color policy lives outside the routing core: the annotator only ever calls a
// ColorFunc. Palettes are plain values built from config so tests can inject
// their own.
package palette

// ColorFunc maps a non-negative arrival time to an opaque color token.
type ColorFunc func(time float64) string

// Palette is a named color policy.
type Palette interface {
	// Name returns the key this palette is registered under.
	Name() string
	// ColorFor returns the color for an arrival time.
	ColorFor(time float64) string
}

// Func adapts a Palette to a ColorFunc.
func Func(p Palette) ColorFunc {
	return p.ColorFor
}
