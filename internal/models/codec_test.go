package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/models"
)

func TestEncodeItemWritesTypeTag(t *testing.T) {
	venue := &models.Venue{
		ItemMeta:      models.ItemMeta{ID: 7, Title: "Lakeside Cabin"},
		PricePerNight: 250,
		Source:        models.VenueSourceAirbnb,
	}

	raw, err := models.EncodeItem(venue)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.JSONEq(t, `"Venue"`, string(fields["__type__"]))
}

func TestItemRoundTrip(t *testing.T) {
	items := []models.Item{
		&models.Venue{
			ItemMeta:      models.ItemMeta{ID: 1, Title: "Tahoe Chalet", URL: "https://airbnb.com/rooms/1"},
			PricePerNight: 310.5,
			Rating:        4.9,
			ReviewCount:   120,
			Bedrooms:      3,
			Beds:          5,
			Amenities:     []string{"hot tub", "wifi"},
			Source:        models.VenueSourceVrbo,
		},
		&models.Document{
			ItemMeta: models.ItemMeta{ID: 2, Title: "House Manual"},
			DocType:  models.DocTypeGoogleDoc,
			StructuredData: map[string]any{
				"address":     "123 Pine St",
				"wifiNetwork": "CabinNet",
			},
		},
		&models.Flight{
			ItemMeta:     models.ItemMeta{ID: 3, Title: "UA 123 - SFO->RNO"},
			Member:       "Shrey",
			Route:        "SFO->RNO",
			Airline:      "United",
			FlightNumber: "UA 123",
			Stops:        0,
			Price:        189,
		},
	}

	raws, err := models.EncodeItems(items)
	require.NoError(t, err)

	decoded, err := models.DecodeItems(raws)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	venue, ok := decoded[0].(*models.Venue)
	require.True(t, ok)
	assert.Equal(t, "Tahoe Chalet", venue.Title)
	assert.Equal(t, models.VenueSourceVrbo, venue.Source)
	assert.Equal(t, 310.5, venue.PricePerNight)
	assert.Equal(t, []string{"hot tub", "wifi"}, venue.Amenities)

	doc, ok := decoded[1].(*models.Document)
	require.True(t, ok)
	assert.Equal(t, models.DocTypeGoogleDoc, doc.DocType)
	assert.Equal(t, "123 Pine St", doc.StructuredData["address"])

	flight, ok := decoded[2].(*models.Flight)
	require.True(t, ok)
	assert.Equal(t, "SFO->RNO", flight.Route)
	assert.True(t, flight.IsNonstop())
}

func TestDecodeItemUnknownTagFallsBack(t *testing.T) {
	raw := json.RawMessage(`{"__type__":"Teleporter","id":9,"title":"Beam Me Up"}`)

	it, err := models.DecodeItem(raw)
	require.NoError(t, err)

	generic, ok := it.(*models.GenericItem)
	require.True(t, ok)
	assert.Equal(t, 9, generic.ID)
	assert.Equal(t, "Beam Me Up", generic.Title)
}

func TestDecodeItemDropsUnknownFields(t *testing.T) {
	raw := json.RawMessage(`{"__type__":"Flight","id":4,"title":"DL 88","stops":1,"warp_factor":9}`)

	it, err := models.DecodeItem(raw)
	require.NoError(t, err)

	flight, ok := it.(*models.Flight)
	require.True(t, ok)
	assert.Equal(t, 4, flight.ID)
	assert.Equal(t, 1, flight.Stops)
}

func TestDecodeItemMissingTagFallsBack(t *testing.T) {
	raw := json.RawMessage(`{"id":5,"title":"Untagged"}`)

	it, err := models.DecodeItem(raw)
	require.NoError(t, err)
	_, ok := it.(*models.GenericItem)
	assert.True(t, ok)
}

func TestIsAccommodation(t *testing.T) {
	assert.True(t, models.IsAccommodation(&models.Venue{}))
	assert.True(t, models.IsAccommodation(&models.Document{DocType: models.DocTypeAirbnb}))
	assert.True(t, models.IsAccommodation(&models.Document{DocType: models.DocTypeVrbo}))
	assert.False(t, models.IsAccommodation(&models.Document{DocType: models.DocTypeGoogleDoc}))
	assert.False(t, models.IsAccommodation(&models.Flight{}))
	assert.False(t, models.IsAccommodation(&models.GenericItem{}))
}
