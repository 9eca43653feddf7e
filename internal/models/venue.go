package models

// VenueSource identifies the site a venue listing was scraped from
type VenueSource string

const (
	VenueSourceAirbnb VenueSource = "airbnb"
	VenueSourceVrbo   VenueSource = "vrbo"
)

// Venue is an accommodation listing (Airbnb or Vrbo)
type Venue struct {
	ItemMeta
	PricePerNight  float64        `json:"price_per_night,omitempty"`
	TotalPrice     float64        `json:"total_price,omitempty"`
	Rating         float64        `json:"rating,omitempty"`
	ReviewCount    int            `json:"review_count,omitempty"`
	ImageURL       string         `json:"image_url,omitempty"`
	Amenities      []string       `json:"amenities,omitempty"`
	Bedrooms       int            `json:"bedrooms,omitempty"`
	Beds           int            `json:"beds,omitempty"`
	Source         VenueSource    `json:"source"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

func (v *Venue) Meta() *ItemMeta { return &v.ItemMeta }
func (v *Venue) Type() ItemType  { return ItemTypeVenue }
