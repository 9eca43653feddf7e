package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/api"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	st.Load()

	srv := httptest.NewServer(api.NewServer(st, testLogger()).Handler())
	t.Cleanup(srv.Close)
	return st, srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetTrip(t *testing.T) {
	st, srv := newTestServer(t)
	st.UpdateTrip(func(tr *models.Trip) {
		tr.Name = "Tahoe 2026"
		tr.Destination = "Lake Tahoe"
	})

	var trip models.Trip
	status := getJSON(t, srv.URL+"/api/trip", &trip)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tahoe 2026", trip.Name)
	assert.Equal(t, "Lake Tahoe", trip.Destination)
}

func TestGetItemsTypeFilter(t *testing.T) {
	st, srv := newTestServer(t)
	st.AddItem(&models.Venue{ItemMeta: models.ItemMeta{Title: "cabin"}})
	st.AddItem(&models.Venue{ItemMeta: models.ItemMeta{Title: "chalet"}})
	st.AddItem(&models.Flight{ItemMeta: models.ItemMeta{Title: "UA 1"}})

	var body struct {
		Items []json.RawMessage `json:"items"`
		Count int               `json:"count"`
	}

	status := getJSON(t, srv.URL+"/api/items", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, body.Count)

	status = getJSON(t, srv.URL+"/api/items?type=venue", &body)
	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, body.Count)

	items, err := models.DecodeItems(body.Items)
	require.NoError(t, err)
	_, ok := items[0].(*models.Venue)
	assert.True(t, ok)
}

func TestGetItemsBadType(t *testing.T) {
	_, srv := newTestServer(t)

	status := getJSON(t, srv.URL+"/api/items?type=submarine", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetItemByID(t *testing.T) {
	st, srv := newTestServer(t)
	v := st.AddItem(&models.Venue{ItemMeta: models.ItemMeta{Title: "cabin"}, PricePerNight: 250})

	var raw json.RawMessage
	status := getJSON(t, srv.URL+"/api/items/1", &raw)
	assert.Equal(t, http.StatusOK, status)

	it, err := models.DecodeItem(raw)
	require.NoError(t, err)
	venue, ok := it.(*models.Venue)
	require.True(t, ok)
	assert.Equal(t, v.Meta().ID, venue.ID)
	assert.Equal(t, 250.0, venue.PricePerNight)
}

func TestGetItemNotFound(t *testing.T) {
	_, srv := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/api/items/99", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "99")
}

func TestGetItemBadID(t *testing.T) {
	_, srv := newTestServer(t)

	status := getJSON(t, srv.URL+"/api/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetBudget(t *testing.T) {
	st, srv := newTestServer(t)
	st.UpdateTrip(func(tr *models.Trip) {
		budget := 4000.0
		tr.TotalBudget = &budget
	})
	st.AddBudgetEntry(models.BudgetEntry{Item: "deposit", Amount: 750, PaidBy: "Alex"})

	var summary models.BudgetSummary
	status := getJSON(t, srv.URL+"/api/budget", &summary)
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, summary.TotalBudget)
	assert.Equal(t, 4000.0, *summary.TotalBudget)
	assert.Equal(t, 750.0, summary.TotalSpent)
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, "deposit", summary.Entries[0].Item)
}

func TestGetSnapshot(t *testing.T) {
	st, srv := newTestServer(t)
	st.AddItem(&models.Venue{ItemMeta: models.ItemMeta{Title: "cabin"}})

	var snap models.Snapshot
	status := getJSON(t, srv.URL+"/api/snapshot", &snap)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, snap.Venues, 1)
	assert.Equal(t, 1, snap.Stats.TotalItems)
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
