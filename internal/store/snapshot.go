package store

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/tripbot/tripbot/internal/models"
)

const (
	snapshotMaxVenues   = 10
	snapshotMaxComments = 20
)

// cloneValue deep-copies an entity through its JSON form, so snapshot
// consumers never hold references into the store's live slices and maps.
func cloneValue[T any](src *T) T {
	var out T
	b, err := json.Marshal(src)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(b, &out)
	return out
}

// Snapshot assembles a point-in-time copy of trip data for the publish
// collaborator: trip info, official items, top venues, all flights and
// documents, the most recent comments and the budget rollup.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &models.Snapshot{
		OfficialVenues: []models.Venue{},
		OfficialDocs:   []models.Document{},
		Venues:         []models.Venue{},
		Flights:        []models.Flight{},
		Documents:      []models.Document{},
		RecentComments: []models.SnapshotComment{},
		GeneratedAt:    time.Now(),
	}

	if s.trip != nil {
		snap.Trip = cloneValue(s.trip)
	} else {
		snap.Trip = *models.NewTrip()
	}

	for _, it := range s.items {
		switch v := it.(type) {
		case *models.Venue:
			if len(snap.Venues) < snapshotMaxVenues {
				snap.Venues = append(snap.Venues, cloneValue(v))
			}
			if v.IsOfficial {
				snap.OfficialVenues = append(snap.OfficialVenues, cloneValue(v))
			}
		case *models.Document:
			snap.Documents = append(snap.Documents, cloneValue(v))
			if v.IsOfficial {
				snap.OfficialDocs = append(snap.OfficialDocs, cloneValue(v))
			}
		case *models.Flight:
			snap.Flights = append(snap.Flights, cloneValue(v))
		}

		for _, c := range it.Meta().Comments {
			snap.RecentComments = append(snap.RecentComments, models.SnapshotComment{
				ItemID:    it.Meta().ID,
				ItemTitle: it.Meta().Title,
				User:      c.User,
				Text:      c.Text,
				Timestamp: c.Timestamp,
			})
		}
	}

	// Most recent first, capped
	sort.SliceStable(snap.RecentComments, func(i, j int) bool {
		return snap.RecentComments[i].Timestamp.After(snap.RecentComments[j].Timestamp)
	})
	if len(snap.RecentComments) > snapshotMaxComments {
		snap.RecentComments = snap.RecentComments[:snapshotMaxComments]
	}

	entries := make([]models.BudgetEntry, len(s.ledger))
	copy(entries, s.ledger)
	snap.Budget = models.BudgetSummary{
		TotalSpent: s.totalSpentLocked(),
		Entries:    entries,
	}
	if s.trip != nil && s.trip.TotalBudget != nil {
		b := *s.trip.TotalBudget
		snap.Budget.TotalBudget = &b
	}

	snap.Stats = s.statsLocked()
	return snap
}
