package config

// MapConfig is the top-level YAML structure.
type MapConfig struct {
	Version        string             `yaml:"version"`
	Engine         EngineConf         `yaml:"engine"`
	Traffic        map[string]float64 `yaml:"traffic"` // level name → multiplier
	UnusedColor    string             `yaml:"unused_color"`
	DefaultPalette string             `yaml:"default_palette"`
	Palettes       []PaletteDef       `yaml:"palettes"`
	Nodes          []NodeDef          `yaml:"nodes"`
	Edges          []EdgeDef          `yaml:"edges"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Workers        int `yaml:"workers"`
	QueueDepth     int `yaml:"queue_depth"`
	QueryTimeoutMs int `yaml:"query_timeout_ms"`
}

// NodeDef is one location.
type NodeDef struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// EdgeDef is one undirected road. Repeated pairs are distinct roads.
type EdgeDef struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Weight float64 `yaml:"weight"`
}

// PaletteDef describes a time → color policy. Type is "buckets" or "gradient".
type PaletteDef struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Buckets  []BucketDef `yaml:"buckets,omitempty"`
	Overflow string      `yaml:"overflow,omitempty"`
	From     string      `yaml:"from,omitempty"`
	To       string      `yaml:"to,omitempty"`
	Max      float64     `yaml:"max,omitempty"`
}

// BucketDef colors every arrival time up to and including UpTo.
type BucketDef struct {
	UpTo  float64 `yaml:"up_to"`
	Color string  `yaml:"color"`
}
