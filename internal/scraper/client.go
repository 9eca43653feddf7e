package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/models"
)

// Client talks to the browser-automation sidecar that drives the travel-site
// scraping scripts. All calls are idempotent and safe to retry; the sidecar
// reports failures through a success=false envelope.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a scraper client against the sidecar base URL. Timeouts
// are applied per call through the caller's context.
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

// VenueQuery describes an accommodation search
type VenueQuery struct {
	Location string  `json:"location"`
	Checkin  string  `json:"checkin"`  // YYYY-MM-DD
	Checkout string  `json:"checkout"` // YYYY-MM-DD
	Adults   int     `json:"adults"`
	MinPrice float64 `json:"min_price,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

// FlightQuery describes a flight search
type FlightQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
}

// Listing is a raw accommodation listing as scraped from a travel site
type Listing struct {
	Name          string             `json:"name"`
	URL           string             `json:"url"`
	PricePerNight float64            `json:"pricePerNight"`
	TotalPrice    float64            `json:"totalPrice"`
	Rating        float64            `json:"rating"`
	ReviewCount   int                `json:"reviewCount"`
	ImageURL      string             `json:"imageUrl"`
	Amenities     []string           `json:"amenities"`
	Bedrooms      int                `json:"bedrooms"`
	Beds          int                `json:"beds"`
	Source        models.VenueSource `json:"source"`
}

// FlightOption is a raw flight record as scraped from Google Flights
type FlightOption struct {
	Airline          string  `json:"airline"`
	FlightNumber     string  `json:"flightNumber"`
	DepartureAirport string  `json:"departureAirport"`
	ArrivalAirport   string  `json:"arrivalAirport"`
	DepartureTime    string  `json:"departureTime"`
	ArrivalTime      string  `json:"arrivalTime"`
	Duration         string  `json:"duration"`
	Stops            int     `json:"stops"`
	Price            float64 `json:"price"`
	URL              string  `json:"url"`
}

// DocumentResult is the scraped content of a single page
type DocumentResult struct {
	Title          string         `json:"title"`
	DocumentType   models.DocType `json:"documentType"`
	StructuredData map[string]any `json:"structuredData"`
	TextChunks     []string       `json:"textChunks"`
}

// envelope is the sidecar's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) post(ctx context.Context, path string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call scraper %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scraper %s returned status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode scraper response: %w", err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = "unknown scraper error"
		}
		return fmt.Errorf("scraper %s failed: %s", path, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode scraper data: %w", err)
		}
	}
	return nil
}

// SearchAirbnb scrapes Airbnb for listings matching the query
func (c *Client) SearchAirbnb(ctx context.Context, q VenueQuery) ([]Listing, error) {
	var data struct {
		Listings []Listing `json:"listings"`
	}
	if err := c.post(ctx, "/scrape/airbnb", q, &data); err != nil {
		return nil, err
	}
	for i := range data.Listings {
		data.Listings[i].Source = models.VenueSourceAirbnb
	}
	return data.Listings, nil
}

// SearchVrbo scrapes Vrbo for listings matching the query
func (c *Client) SearchVrbo(ctx context.Context, q VenueQuery) ([]Listing, error) {
	var data struct {
		Listings []Listing `json:"listings"`
	}
	if err := c.post(ctx, "/scrape/vrbo", q, &data); err != nil {
		return nil, err
	}
	for i := range data.Listings {
		data.Listings[i].Source = models.VenueSourceVrbo
	}
	return data.Listings, nil
}

// SearchVenues runs the Airbnb and Vrbo searches in parallel and combines
// their listings. One site failing does not discard the other's results; the
// returned error aggregates whatever failed and is nil only when both
// succeeded.
func (c *Client) SearchVenues(ctx context.Context, q VenueQuery) ([]Listing, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		venues  []Listing
		errs    *multierror.Error
		sources = []struct {
			name   string
			search func(context.Context, VenueQuery) ([]Listing, error)
		}{
			{"airbnb", c.SearchAirbnb},
			{"vrbo", c.SearchVrbo},
		}
	)

	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listings, err := src.search(ctx, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.WithError(err).Warnf("%s search failed", src.name)
				errs = multierror.Append(errs, err)
				return
			}
			c.logger.Infof("%s search returned %d listings", src.name, len(listings))
			venues = append(venues, listings...)
		}()
	}
	wg.Wait()

	return venues, errs.ErrorOrNil()
}

// SearchFlights scrapes Google Flights for options matching the query
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOption, error) {
	var data struct {
		Flights []FlightOption `json:"flights"`
	}
	if err := c.post(ctx, "/scrape/flights", q, &data); err != nil {
		return nil, err
	}
	return data.Flights, nil
}

// ScrapeDocument scrapes any page (Airbnb, Vrbo, Google Doc, plain HTML)
// for logistics details and indexable text
func (c *Client) ScrapeDocument(ctx context.Context, url string) (*DocumentResult, error) {
	var data DocumentResult
	req := struct {
		URL string `json:"url"`
	}{URL: url}
	if err := c.post(ctx, "/scrape/document", req, &data); err != nil {
		return nil, err
	}
	if data.DocumentType == "" {
		data.DocumentType = models.DocTypeHTML
	}
	return &data, nil
}
