package store_test

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.New(path, testLogger())
	s.Load()
	return s
}

func venue(title string) *models.Venue {
	return &models.Venue{
		ItemMeta: models.ItemMeta{Title: title},
		Source:   models.VenueSourceAirbnb,
	}
}

// ---------------------------------------------------------------------------
// Item lifecycle
// ---------------------------------------------------------------------------

func TestAddItemAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)

	first := s.AddItem(venue("one"))
	second := s.AddItem(venue("two"))
	assert.Equal(t, 1, first.Meta().ID)
	assert.Equal(t, 2, second.Meta().ID)

	// Deleting never frees an id for reuse
	require.True(t, s.DeleteItem(2))
	third := s.AddItem(venue("three"))
	assert.Equal(t, 3, third.Meta().ID)
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	it := s.AddItem(venue("cabin"))

	assert.True(t, s.DeleteItem(it.Meta().ID))
	assert.False(t, s.DeleteItem(it.Meta().ID))
	assert.Nil(t, s.ItemByID(it.Meta().ID))
	assert.Empty(t, s.Items())
}

func TestFindByURL(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(&models.Document{
		ItemMeta: models.ItemMeta{Title: "manual", URL: "https://docs.google.com/document/d/abc"},
		DocType:  models.DocTypeGoogleDoc,
	})

	found := s.FindByURL("https://docs.google.com/document/d/abc")
	require.NotNil(t, found)
	assert.Equal(t, "manual", found.Meta().Title)
	assert.Nil(t, s.FindByURL("https://airbnb.com/rooms/999"))
}

func TestTypeFilters(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(venue("v1"))
	s.AddItem(&models.Flight{ItemMeta: models.ItemMeta{Title: "f1"}})
	s.AddItem(&models.Document{ItemMeta: models.ItemMeta{Title: "d1"}, DocType: models.DocTypeHTML})
	s.AddItem(venue("v2"))

	assert.Len(t, s.Venues(), 2)
	assert.Len(t, s.Flights(), 1)
	assert.Len(t, s.Documents(), 1)
	assert.Equal(t, "v1", s.Venues()[0].Title)

	stats := s.Stats()
	assert.Equal(t, 4, stats.TotalItems)
	assert.Equal(t, 2, stats.Venues)
}

// ---------------------------------------------------------------------------
// Official marking
// ---------------------------------------------------------------------------

func TestMarkOfficialReplacesPreviousAccommodation(t *testing.T) {
	s := newTestStore(t)
	v1 := s.AddItem(venue("first"))
	v2 := s.AddItem(venue("second"))

	marked, notFound := s.MarkOfficial(v1.Meta().ID)
	require.Empty(t, notFound)
	require.Len(t, marked, 1)
	assert.True(t, s.ItemByID(v1.Meta().ID).Meta().IsOfficial)

	s.MarkOfficial(v2.Meta().ID)
	assert.False(t, s.ItemByID(v1.Meta().ID).Meta().IsOfficial)
	assert.True(t, s.ItemByID(v2.Meta().ID).Meta().IsOfficial)
}

func TestMarkOfficialAirbnbDocumentCountsAsAccommodation(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))
	doc := s.AddItem(&models.Document{
		ItemMeta: models.ItemMeta{Title: "listing"},
		DocType:  models.DocTypeAirbnb,
	})

	s.MarkOfficial(v.Meta().ID)
	s.MarkOfficial(doc.Meta().ID)

	assert.False(t, s.ItemByID(v.Meta().ID).Meta().IsOfficial)
	assert.True(t, s.ItemByID(doc.Meta().ID).Meta().IsOfficial)
}

func TestMarkOfficialBatchKeepsSameBatchItems(t *testing.T) {
	s := newTestStore(t)
	v1 := s.AddItem(venue("one"))
	v2 := s.AddItem(venue("two"))

	marked, notFound := s.MarkOfficial(v1.Meta().ID, v2.Meta().ID)
	require.Empty(t, notFound)
	assert.Len(t, marked, 2)

	// Items marked in the same batch are exempt from mutual exclusion
	assert.True(t, s.ItemByID(v1.Meta().ID).Meta().IsOfficial)
	assert.True(t, s.ItemByID(v2.Meta().ID).Meta().IsOfficial)
}

func TestMarkOfficialNonAccommodationDoesNotReplace(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))
	doc := s.AddItem(&models.Document{
		ItemMeta: models.ItemMeta{Title: "itinerary"},
		DocType:  models.DocTypeGoogleDoc,
	})

	s.MarkOfficial(v.Meta().ID)
	s.MarkOfficial(doc.Meta().ID)

	// A google doc is not an accommodation, both stay official
	assert.True(t, s.ItemByID(v.Meta().ID).Meta().IsOfficial)
	assert.True(t, s.ItemByID(doc.Meta().ID).Meta().IsOfficial)
	assert.Len(t, s.OfficialItems(), 2)
}

func TestMarkOfficialNotFound(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))

	marked, notFound := s.MarkOfficial(v.Meta().ID, 99)
	assert.Len(t, marked, 1)
	assert.Equal(t, []int{99}, notFound)
}

func TestUnmarkOfficial(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))
	s.MarkOfficial(v.Meta().ID)

	assert.True(t, s.UnmarkOfficial(v.Meta().ID))
	assert.False(t, s.ItemByID(v.Meta().ID).Meta().IsOfficial)
	assert.False(t, s.UnmarkOfficial(99))
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestAddComment(t *testing.T) {
	s := newTestStore(t)
	v := s.AddItem(venue("cabin"))

	it := s.AddComment(v.Meta().ID, "Alex", "love it")
	require.NotNil(t, it)
	require.Len(t, it.Meta().Comments, 1)
	assert.Equal(t, "Alex", it.Meta().Comments[0].User)
	assert.Equal(t, "love it", it.Meta().Comments[0].Text)
	assert.False(t, it.Meta().Comments[0].Timestamp.IsZero())

	assert.Nil(t, s.AddComment(99, "Alex", "nope"))
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := store.New(path, testLogger())
	s.Load()
	s.AddItem(venue("cabin"))
	s.AddItem(&models.Flight{ItemMeta: models.ItemMeta{Title: "UA 1"}, Stops: 1, Price: 200})
	s.UpdateMember("Shrey", func(m *models.Member) {
		budget := 400.0
		m.Budget = &budget
	})
	s.AddBudgetEntry(models.BudgetEntry{Item: "deposit", Amount: 500, PaidBy: "Alex"})
	s.UpdateTrip(func(tr *models.Trip) { tr.Destination = "Lake Tahoe" })

	reloaded := store.New(path, testLogger())
	reloaded.Load()

	assert.Len(t, reloaded.Items(), 2)
	assert.Len(t, reloaded.Venues(), 1)
	assert.Len(t, reloaded.Flights(), 1)
	assert.Equal(t, 500.0, reloaded.TotalSpent())

	trip, ok := reloaded.Trip()
	require.True(t, ok)
	assert.Equal(t, "Lake Tahoe", trip.Destination)

	member := reloaded.GetOrCreateMember("Shrey")
	require.NotNil(t, member.Budget)
	assert.Equal(t, 400.0, *member.Budget)

	// Id counter resumes past persisted items
	next := reloaded.AddItem(venue("new"))
	assert.Equal(t, 3, next.Meta().ID)
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := store.New(path, testLogger())
	s.Load()

	assert.Empty(t, s.Items())
	trip, ok := s.Trip()
	require.True(t, ok)
	assert.Equal(t, "New Trip", trip.Name)

	it := s.AddItem(venue("fresh"))
	assert.Equal(t, 1, it.Meta().ID)
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "missing.json"), testLogger())
	s.Load()
	assert.Empty(t, s.Items())
}

func TestLoadClampsNegativePaginationIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := `{
  "items": [{"__type__": "Venue", "id": 1, "title": "cabin"}],
  "next_item_id": 2,
  "venue_pagination_index": -2
}`
	require.NoError(t, os.WriteFile(path, []byte(state), 0o644))

	s := store.New(path, testLogger())
	s.Load()
	assert.Equal(t, 0, s.VenuePageIndex())

	// Paging starts cleanly from the first venue instead of panicking
	page, start, total, wrapped := s.NextVenuePage(3)
	assert.False(t, wrapped)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, "cabin", page[0].Title)
}

// ---------------------------------------------------------------------------
// Venue pagination
// ---------------------------------------------------------------------------

func TestNextVenuePage(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.AddItem(venue(name))
	}

	page, start, total, wrapped := s.NextVenuePage(3)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, total)
	assert.False(t, wrapped)
	require.Len(t, page, 3)
	assert.Equal(t, "a", page[0].Title)

	page, start, _, wrapped = s.NextVenuePage(3)
	assert.Equal(t, 3, start)
	assert.False(t, wrapped)
	require.Len(t, page, 2)
	assert.Equal(t, "e", page[1].Title)

	// Cursor exhausted: reset to zero and report the wrap
	page, _, _, wrapped = s.NextVenuePage(3)
	assert.True(t, wrapped)
	assert.Empty(t, page)
	assert.Equal(t, 0, s.VenuePageIndex())

	// Next call starts over from the beginning
	page, start, _, wrapped = s.NextVenuePage(3)
	assert.Equal(t, 0, start)
	assert.False(t, wrapped)
	assert.Equal(t, "a", page[0].Title)
}

func TestNextVenuePageEmpty(t *testing.T) {
	s := newTestStore(t)
	page, _, total, wrapped := s.NextVenuePage(3)
	assert.Empty(t, page)
	assert.Zero(t, total)
	assert.False(t, wrapped)
}

func TestClearVenuesLeavesOtherItems(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(venue("a"))
	s.AddItem(venue("b"))
	s.AddItem(&models.Flight{ItemMeta: models.ItemMeta{Title: "UA 1"}})

	assert.Equal(t, 2, s.ClearVenues())
	assert.Empty(t, s.Venues())
	assert.Len(t, s.Flights(), 1)
}

// ---------------------------------------------------------------------------
// Members and budget
// ---------------------------------------------------------------------------

func TestGetOrCreateMemberReturnsCopy(t *testing.T) {
	s := newTestStore(t)

	m := s.GetOrCreateMember("Alex")
	assert.Equal(t, "Alex", m.Name)

	// Mutating the returned copy must not touch the stored record
	m.Location = "SF"
	again := s.GetOrCreateMember("Alex")
	assert.Empty(t, again.Location)
}

func TestUpdateMember(t *testing.T) {
	s := newTestStore(t)
	s.UpdateMember("Alex", func(m *models.Member) { m.Location = "SF" })

	m := s.GetOrCreateMember("Alex")
	assert.Equal(t, "SF", m.Location)
	assert.Len(t, s.Members(), 1)
}

func TestTotalSpent(t *testing.T) {
	s := newTestStore(t)
	assert.Zero(t, s.TotalSpent())

	s.AddBudgetEntry(models.BudgetEntry{Item: "airbnb", Amount: 1200, PaidBy: "Alex"})
	s.AddBudgetEntry(models.BudgetEntry{Item: "gas", Amount: 80.5, PaidBy: "Sam"})
	assert.InDelta(t, 1280.5, s.TotalSpent(), 0.001)
	assert.Len(t, s.Ledger(), 2)
}

func TestTotalMemberBudget(t *testing.T) {
	s := newTestStore(t)
	s.UpdateMember("A", func(m *models.Member) { b := 300.0; m.Budget = &b })
	s.UpdateMember("B", func(m *models.Member) { b := 450.0; m.Budget = &b })
	s.UpdateMember("C", func(m *models.Member) {})

	assert.Equal(t, 750.0, s.TotalMemberBudget())
}

// ---------------------------------------------------------------------------
// Sync triggering
// ---------------------------------------------------------------------------

type countingTrigger struct {
	calls atomic.Int64
}

func (c *countingTrigger) Trigger() { c.calls.Add(1) }

func TestContentMutationsScheduleSync(t *testing.T) {
	s := newTestStore(t)
	trig := &countingTrigger{}
	s.SetSyncTrigger(trig)

	v := s.AddItem(venue("cabin"))
	s.AddComment(v.Meta().ID, "Alex", "nice")
	s.MarkOfficial(v.Meta().ID)
	s.AddBudgetEntry(models.BudgetEntry{Item: "deposit", Amount: 100, PaidBy: "Alex"})

	assert.Equal(t, int64(4), trig.calls.Load())
}

func TestBulkClearsDoNotScheduleSync(t *testing.T) {
	s := newTestStore(t)
	s.AddItem(venue("a"))

	trig := &countingTrigger{}
	s.SetSyncTrigger(trig)

	s.ClearVenues()
	s.ClearFlights()
	s.ClearDocuments()
	assert.Zero(t, trig.calls.Load())
}

func TestSyncStatusStampsTerminalStates(t *testing.T) {
	s := newTestStore(t)

	s.SetSyncStatus(models.SyncStatusInProgress)
	assert.Empty(t, s.SyncConfig().LastSyncAt)

	s.SetSyncStatus(models.SyncStatusSuccess)
	cfg := s.SyncConfig()
	assert.Equal(t, models.SyncStatusSuccess, cfg.LastSyncStatus)
	assert.NotEmpty(t, cfg.LastSyncAt)
}
