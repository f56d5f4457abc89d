package graph

// Node is a named location on the map.
// X and Y are layout coordinates; routing never reads them.
type Node struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Edge is an undirected road between two nodes.
// Source and Target are storage labels only: the edge is traversable both ways
// at the same base Weight.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// EdgeKey is the canonical, orientation-free identity of an endpoint pair.
// A <= B always holds.
type EdgeKey struct {
	A string
	B string
}

// KeyOf returns the canonical key for the unordered pair {u, v}.
func KeyOf(u, v string) EdgeKey {
	if v < u {
		u, v = v, u
	}
	return EdgeKey{A: u, B: v}
}

// Key returns the canonical key of the edge's endpoints.
func (e Edge) Key() EdgeKey {
	return KeyOf(e.Source, e.Target)
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite to id. For a self-loop it returns id.
// The result is meaningless if the edge does not touch id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

func (k EdgeKey) String() string {
	return k.A + "–" + k.B
}
