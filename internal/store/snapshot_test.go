package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/models"
)

func TestSnapshotContents(t *testing.T) {
	s := newTestStore(t)

	v := s.AddItem(venue("cabin"))
	s.MarkOfficial(v.Meta().ID)
	s.AddItem(&models.Flight{ItemMeta: models.ItemMeta{Title: "UA 1"}, Price: 150})
	s.AddItem(&models.Document{ItemMeta: models.ItemMeta{Title: "manual"}, DocType: models.DocTypeGoogleDoc})
	s.AddComment(v.Meta().ID, "Alex", "looks great")
	s.AddBudgetEntry(models.BudgetEntry{Item: "deposit", Amount: 500, PaidBy: "Alex"})
	s.UpdateTrip(func(tr *models.Trip) {
		budget := 5000.0
		tr.TotalBudget = &budget
	})

	snap := s.Snapshot()

	assert.Equal(t, "New Trip", snap.Trip.Name)
	require.Len(t, snap.OfficialVenues, 1)
	assert.Equal(t, "cabin", snap.OfficialVenues[0].Title)
	assert.Len(t, snap.Venues, 1)
	assert.Len(t, snap.Flights, 1)
	assert.Len(t, snap.Documents, 1)

	require.Len(t, snap.RecentComments, 1)
	assert.Equal(t, v.Meta().ID, snap.RecentComments[0].ItemID)
	assert.Equal(t, "cabin", snap.RecentComments[0].ItemTitle)

	assert.Equal(t, 500.0, snap.Budget.TotalSpent)
	require.NotNil(t, snap.Budget.TotalBudget)
	assert.Equal(t, 5000.0, *snap.Budget.TotalBudget)

	assert.Equal(t, 3, snap.Stats.TotalItems)
	assert.Equal(t, 1, snap.Stats.Official)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestSnapshotCapsVenues(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 14; i++ {
		s.AddItem(venue(fmt.Sprintf("venue-%d", i)))
	}

	snap := s.Snapshot()
	assert.Len(t, snap.Venues, 10)
	assert.Equal(t, "venue-0", snap.Venues[0].Title)
}

func TestSnapshotCommentsNewestFirstCapped(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))
	for i := 0; i < 25; i++ {
		s.AddComment(v.Meta().ID, "Alex", fmt.Sprintf("comment-%d", i))
	}

	snap := s.Snapshot()
	require.Len(t, snap.RecentComments, 20)
	assert.Equal(t, "comment-24", snap.RecentComments[0].Text)
	assert.Equal(t, "comment-5", snap.RecentComments[19].Text)
}

func TestSnapshotIsDetachedFromStore(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(venue("cabin"))

	snap := s.Snapshot()
	snap.Venues[0].Title = "hacked"

	assert.Equal(t, "cabin", s.Venues()[0].Title)
}
