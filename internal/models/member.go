package models

// FlightCriteria holds a member's flight-search preferences and booking
// details. All fields are optional and filled in as the member shares them.
type FlightCriteria struct {
	Departure        string `json:"departure,omitempty"`
	Destination      string `json:"destination,omitempty"`
	ArrivalDate      string `json:"arrival_date,omitempty"`
	DepartureTime    string `json:"departure_time,omitempty"`
	FlightNumber     string `json:"flight_number,omitempty"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
	Airline          string `json:"airline,omitempty"`
	LastName         string `json:"last_name,omitempty"`
}

// Member is a trip participant, keyed by name. Members are created lazily on
// first reference.
type Member struct {
	Name           string         `json:"name"`
	Location       string         `json:"location,omitempty"`
	Budget         *float64       `json:"budget,omitempty"`
	FlightCriteria FlightCriteria `json:"flight_criteria"`
	Notes          string         `json:"notes,omitempty"`
}
