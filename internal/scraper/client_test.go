package scraper_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/scraper"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func listingsResponse(names ...string) map[string]any {
	listings := make([]map[string]any, 0, len(names))
	for _, n := range names {
		listings = append(listings, map[string]any{
			"name":          n,
			"url":           "https://example.com/" + n,
			"pricePerNight": 200.0,
		})
	}
	return map[string]any{
		"success": true,
		"data":    map[string]any{"listings": listings},
	}
}

func TestSearchVenuesCombinesBothSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrape/airbnb":
			json.NewEncoder(w).Encode(listingsResponse("airbnb-1", "airbnb-2"))
		case "/scrape/vrbo":
			json.NewEncoder(w).Encode(listingsResponse("vrbo-1"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	listings, err := c.SearchVenues(context.Background(), scraper.VenueQuery{Location: "Tahoe"})
	require.NoError(t, err)
	require.Len(t, listings, 3)

	sources := map[models.VenueSource]int{}
	for _, l := range listings {
		sources[l.Source]++
	}
	assert.Equal(t, 2, sources[models.VenueSourceAirbnb])
	assert.Equal(t, 1, sources[models.VenueSourceVrbo])
}

func TestSearchVenuesPartialFailureKeepsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrape/airbnb":
			json.NewEncoder(w).Encode(listingsResponse("airbnb-1"))
		case "/scrape/vrbo":
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "bot detected"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	listings, err := c.SearchVenues(context.Background(), scraper.VenueQuery{Location: "Tahoe"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot detected")
	require.Len(t, listings, 1)
	assert.Equal(t, "airbnb-1", listings[0].Name)
}

func TestSearchFlights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scrape/flights", r.URL.Path)

		var q scraper.FlightQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "SFO", q.Origin)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"flights": []map[string]any{
					{"airline": "United", "flightNumber": "UA 123", "price": 189.0, "stops": 0},
				},
			},
		})
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	flights, err := c.SearchFlights(context.Background(), scraper.FlightQuery{
		Origin:        "SFO",
		Destination:   "RNO",
		DepartureDate: "2026-08-25",
	})
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "United", flights[0].Airline)
	assert.Equal(t, 189.0, flights[0].Price)
}

func TestScrapeDocumentDefaultsType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"title":          "House Rules",
				"structuredData": map[string]any{"address": "123 Pine St"},
				"textChunks":     []string{"chunk one", "chunk two"},
			},
		})
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	doc, err := c.ScrapeDocument(context.Background(), "https://example.com/rules")
	require.NoError(t, err)
	assert.Equal(t, "House Rules", doc.Title)
	assert.Equal(t, models.DocTypeHTML, doc.DocumentType)
	assert.Len(t, doc.TextChunks, 2)
}

func TestScraperErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "timeout loading page"})
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	_, err := c.ScrapeDocument(context.Background(), "https://example.com/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout loading page")
}

func TestScraperHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := scraper.NewClient(srv.URL, testLogger())
	_, err := c.SearchAirbnb(context.Background(), scraper.VenueQuery{Location: "Tahoe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
