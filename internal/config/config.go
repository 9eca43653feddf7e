package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken string
	OpenAIAPIKey  string
	ScraperURL    string
	ChromaURL     string
	StateFilePath string
	LogLevel      string
	Port          string

	VenueSearchTimeout  time.Duration
	FlightSearchTimeout time.Duration
	ScrapeTimeout       time.Duration
	PublishTimeout      time.Duration
	ExtractTimeout      time.Duration

	MaxVenuesToStore  int
	MaxFlightsToStore int
	VenuePageSize     int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		ScraperURL:    getEnvOrDefault("SCRAPER_URL", "http://localhost:7331"),
		ChromaURL:     getEnvOrDefault("CHROMA_URL", "http://localhost:8000"),
		StateFilePath: getEnvOrDefault("STATE_FILE", "travel_bot_state.json"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		Port:          getEnvOrDefault("PORT", "8080"),

		VenueSearchTimeout:  getEnvDuration("VENUE_SEARCH_TIMEOUT", 90*time.Second),
		FlightSearchTimeout: getEnvDuration("FLIGHT_SEARCH_TIMEOUT", 90*time.Second),
		ScrapeTimeout:       getEnvDuration("SCRAPE_TIMEOUT", 120*time.Second),
		PublishTimeout:      getEnvDuration("PUBLISH_TIMEOUT", 120*time.Second),
		ExtractTimeout:      getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),

		MaxVenuesToStore:  getEnvInt("MAX_VENUES_TO_STORE", 10),
		MaxFlightsToStore: getEnvInt("MAX_FLIGHTS_TO_STORE", 5),
		VenuePageSize:     getEnvInt("VENUE_PAGE_SIZE", 3),
	}

	// Required environment variables
	if cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or default if unset or invalid
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration returns a duration environment variable (e.g. "90s") or
// default if unset or invalid
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
