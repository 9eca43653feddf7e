package models

// BudgetEntry is one expense in the trip's append-only budget ledger. The
// documented contract requires a positive amount; callers validate before
// appending, the ledger itself does not enforce it.
type BudgetEntry struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"` // ISO format
	PaidBy string  `json:"paid_by"`
	Notes  string  `json:"notes,omitempty"`
}
