package models

import "time"

// ItemType identifies the concrete variant of an Item
type ItemType string

const (
	ItemTypeVenue    ItemType = "venue"
	ItemTypeDocument ItemType = "document"
	ItemTypeFlight   ItemType = "flight"
	// ItemTypeGeneric is the fallback for records persisted without a
	// recognizable type tag.
	ItemTypeGeneric ItemType = "item"
)

// Comment is a piece of feedback attached to an item. Comments are
// append-only and keep insertion order.
type Comment struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemMeta holds the fields shared by every item variant. The ID is assigned
// by the store at insertion time; callers never choose it.
type ItemMeta struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	Comments   []Comment `json:"comments"`
	IsOfficial bool      `json:"is_official"`
	Tags       []string  `json:"tags"`
}

// AddComment appends a comment to the item
func (m *ItemMeta) AddComment(user, text string) {
	m.Comments = append(m.Comments, Comment{
		User:      user,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// Item is any trip-planning artifact tracked by integer id in the store.
// The variant set is closed: Venue, Document and Flight, plus GenericItem as
// the decode fallback for unknown persisted shapes.
type Item interface {
	Meta() *ItemMeta
	Type() ItemType
}

// GenericItem is the base item shape used when a persisted record carries no
// recognizable type tag. It never originates from live code paths.
type GenericItem struct {
	ItemMeta
}

func (g *GenericItem) Meta() *ItemMeta { return &g.ItemMeta }
func (g *GenericItem) Type() ItemType  { return ItemTypeGeneric }

// IsAccommodation reports whether the item is accommodation-class: a Venue,
// or a Document representing an Airbnb/Vrbo listing. At most one
// accommodation-class item may be official at a time.
func IsAccommodation(it Item) bool {
	switch v := it.(type) {
	case *Venue:
		return true
	case *Document:
		return v.DocType == DocTypeAirbnb || v.DocType == DocTypeVrbo
	default:
		return false
	}
}
