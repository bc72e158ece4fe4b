// Package config provides environment-based configuration for the service
// and CLI. A .env file is honored when present; real environment variables
// always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort            = 8000
	DefaultAcquireInterval = 6 // hours
	DefaultSearchTerm      = "DevOps"
	DefaultSearchLocation  = "Chile"
	DefaultMaxResults      = 50
)

// Config carries everything the process reads from the environment.
type Config struct {
	// Persistence
	DatabaseURL string // PostgreSQL connection URL (required)
	RedisURL    string // Optional Redis URL for the seen-ID cache

	// LinkedIn session credentials for the internal API strategy
	LinkedInEmail    string
	LinkedInPassword string

	// LinkedIn OAuth application for the official API strategy
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string
	LinkedInAccessToken  string // Pre-obtained token, skips the OAuth flow

	// Acquisition behavior
	SearchTerm           string
	SearchLocation       string
	MaxResults           int
	AcquireIntervalHours int  // 0 disables the scheduler
	UseBrowser           bool // Enable the headless-browser scrape strategy

	// HTTP server
	Port    int
	Verbose bool
}

// Load reads configuration from the environment, after loading .env if one
// exists at the working directory. Missing .env is not an error.
func Load() (*Config, error) {
	// godotenv does not override variables already set in the environment.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		LinkedInEmail:        os.Getenv("LINKEDIN_EMAIL"),
		LinkedInPassword:     os.Getenv("LINKEDIN_PASSWORD"),
		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInRedirectURI:  os.Getenv("LINKEDIN_REDIRECT_URI"),
		LinkedInAccessToken:  os.Getenv("LINKEDIN_ACCESS_TOKEN"),
		SearchTerm:           envOrDefault("SEARCH_TERM", DefaultSearchTerm),
		SearchLocation:       envOrDefault("SEARCH_LOCATION", DefaultSearchLocation),
		UseBrowser:           envBool("USE_BROWSER"),
		Verbose:              envBool("VERBOSE"),
	}

	var err error
	if cfg.Port, err = envInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = envInt("MAX_RESULTS", DefaultMaxResults); err != nil {
		return nil, err
	}
	if cfg.AcquireIntervalHours, err = envInt("ACQUIRE_INTERVAL_HOURS", DefaultAcquireInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required values are present and ranges are sane.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be in 1..65535, got %d", c.Port)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("config error: MAX_RESULTS must be positive, got %d", c.MaxResults)
	}
	if c.AcquireIntervalHours < 0 {
		return fmt.Errorf("config error: ACQUIRE_INTERVAL_HOURS must be non-negative, got %d", c.AcquireIntervalHours)
	}
	return nil
}

// SearchLocations splits the configured location on commas, so a sweep over
// "Chile,Remote,Argentina" can be configured with one variable.
func (c *Config) SearchLocations() []string {
	parts := strings.Split(c.SearchLocation, ",")
	locations := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			locations = append(locations, p)
		}
	}
	if len(locations) == 0 {
		locations = []string{DefaultSearchLocation}
	}
	return locations
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", key, v)
	}
	return n, nil
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
