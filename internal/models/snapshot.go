package models

import "time"

// Snapshot is a read-only, point-in-time copy of trip data assembled for
// handoff to the publish collaborator. It contains plain data only, never
// references into the store's live collections.
type Snapshot struct {
	Trip           Trip              `json:"trip"`
	OfficialVenues []Venue           `json:"official_venues"`
	OfficialDocs   []Document        `json:"official_docs"`
	Venues         []Venue           `json:"all_venues"` // top N only
	Flights        []Flight          `json:"all_flights"`
	Documents      []Document        `json:"all_docs"`
	RecentComments []SnapshotComment `json:"recent_comments"`
	Budget         BudgetSummary     `json:"budget"`
	Stats          Stats             `json:"stats"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// SnapshotComment is a comment annotated with the item it belongs to
type SnapshotComment struct {
	ItemID    int       `json:"item_id"`
	ItemTitle string    `json:"item_title"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// BudgetSummary is the ledger rollup included in a snapshot
type BudgetSummary struct {
	TotalBudget *float64      `json:"total_budget,omitempty"`
	TotalSpent  float64       `json:"total_spent"`
	Entries     []BudgetEntry `json:"entries"`
}

// Stats holds item counts for the status command and the snapshot
type Stats struct {
	TotalItems int `json:"total_items"`
	Venues     int `json:"venues_count"`
	Flights    int `json:"flights_count"`
	Documents  int `json:"docs_count"`
	Official   int `json:"official_count"`
}
