package models

import "time"

// Workshop is a roadside workshop as served to clients: services are
// split from their stored comma-joined form and the 24x7 flag is a real
// boolean. Rating is derived from reviews, never set by a caller.
type Workshop struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Highway   string    `json:"highway"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Phone     string    `json:"phone"`
	Rating    float64   `json:"rating"`
	Services  []string  `json:"services"`
	Is24x7    bool      `json:"is_24x7"`
	Hours     string    `json:"hours"`
	CreatedAt time.Time `json:"created_at"`

	// Distance is only populated by nearby queries (squared degrees).
	Distance float64 `json:"distance,omitempty"`
}
