package query

import "time"

// Query is the canonical input model for a route request.
type Query struct {
	ID          string    `json:"id" validate:"omitempty,max=64"`
	Source      string    `json:"source" validate:"required,max=64"`
	Destination string    `json:"destination,omitempty" validate:"omitempty,max=64"`
	Traffic     string    `json:"traffic,omitempty" validate:"omitempty,oneof=low medium high LOW MEDIUM HIGH Low Medium High"`
	Palette     string    `json:"palette,omitempty" validate:"omitempty,max=64"`
	ReceivedAt  time.Time `json:"-"`
}
