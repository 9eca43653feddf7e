package models

// Flight is a flight option found for a trip member
type Flight struct {
	ItemMeta
	Member        string  `json:"member"`
	Route         string  `json:"route"` // "SFO->RNO"
	Airline       string  `json:"airline,omitempty"`
	FlightNumber  string  `json:"flight_number,omitempty"`
	DepartureTime string  `json:"departure_time,omitempty"`
	ArrivalTime   string  `json:"arrival_time,omitempty"`
	Duration      string  `json:"duration,omitempty"`
	Stops         int     `json:"stops"` // 0 = nonstop
	Price         float64 `json:"price,omitempty"`
}

func (f *Flight) Meta() *ItemMeta { return &f.ItemMeta }
func (f *Flight) Type() ItemType  { return ItemTypeFlight }

// IsNonstop reports whether the flight has no stops
func (f *Flight) IsNonstop() bool {
	return f.Stops == 0
}
