package models

// DocType identifies what kind of page a saved document came from. A scraped
// Airbnb page may be stored as either a Venue or an airbnb Document, which is
// why both carry the same structured-data schema.
type DocType string

const (
	DocTypeAirbnb    DocType = "airbnb"
	DocTypeVrbo      DocType = "vrbo"
	DocTypeGoogleDoc DocType = "google_doc"
	DocTypeHTML      DocType = "html"
)

// Document is a saved document: a scraped listing page, a Google Doc with
// trip logistics, or any other HTML page.
type Document struct {
	ItemMeta
	DocType DocType `json:"doc_type"`
	// StructuredData holds scraped logistics: address, check-in/out times,
	// wifi, access codes, phone, host, parking, quiet hours, rules.
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

func (d *Document) Meta() *ItemMeta { return &d.ItemMeta }
func (d *Document) Type() ItemType  { return ItemTypeDocument }
