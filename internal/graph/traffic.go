package graph

import (
	"fmt"
	"strings"
)

// TrafficLevel is the congestion setting applied uniformly to every edge weight.
type TrafficLevel int

const (
	TrafficLow TrafficLevel = iota
	TrafficMedium
	TrafficHigh
)

// TrafficLevels lists every level in ascending congestion.
var TrafficLevels = []TrafficLevel{TrafficLow, TrafficMedium, TrafficHigh}

func (l TrafficLevel) String() string {
	switch l {
	case TrafficLow:
		return "low"
	case TrafficMedium:
		return "medium"
	case TrafficHigh:
		return "high"
	default:
		return fmt.Sprintf("traffic(%d)", int(l))
	}
}

// ParseTrafficLevel maps "low", "medium" or "high" (any case) to a level.
// The empty string selects medium.
func ParseTrafficLevel(s string) (TrafficLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TrafficLow, nil
	case "", "medium":
		return TrafficMedium, nil
	case "high":
		return TrafficHigh, nil
	}
	return TrafficMedium, fmt.Errorf("unknown traffic level %q", s)
}

// TrafficTable maps a level to its weight multiplier.
type TrafficTable map[TrafficLevel]float64

// DefaultTrafficTable returns {low: 0.8, medium: 1.0, high: 1.5}.
func DefaultTrafficTable() TrafficTable {
	return TrafficTable{
		TrafficLow:    0.8,
		TrafficMedium: 1.0,
		TrafficHigh:   1.5,
	}
}

// Multiplier returns the factor for l, or 1.0 when the table has no entry.
func (t TrafficTable) Multiplier(l TrafficLevel) float64 {
	if m, ok := t[l]; ok {
		return m
	}
	return 1.0
}
