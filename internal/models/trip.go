package models

// DateRange is a trip's start/end dates in YYYY-MM-DD form. Both are
// optional until set.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsSet reports whether both ends of the range are present
func (d DateRange) IsSet() bool {
	return d.Start != "" && d.End != ""
}

// Trip is the trip being planned. One state store tracks exactly one trip;
// it is created lazily on first need.
type Trip struct {
	Name                  string    `json:"name"`
	Destination           string    `json:"destination,omitempty"`
	Dates                 DateRange `json:"dates"`
	IsTracking            bool      `json:"is_tracking"`
	TrackedConversationID string    `json:"tracked_conversation_id,omitempty"`
	TotalBudget           *float64  `json:"total_budget,omitempty"`
}

// NewTrip creates a trip with default values
func NewTrip() *Trip {
	return &Trip{Name: "New Trip"}
}
