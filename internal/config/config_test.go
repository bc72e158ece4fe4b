package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobsradar")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultMaxResults, cfg.MaxResults)
	assert.Equal(t, DefaultAcquireInterval, cfg.AcquireIntervalHours)
	assert.Equal(t, DefaultSearchTerm, cfg.SearchTerm)
	assert.Equal(t, DefaultSearchLocation, cfg.SearchLocation)
	assert.False(t, cfg.UseBrowser)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobsradar")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_RESULTS", "25")
	t.Setenv("ACQUIRE_INTERVAL_HOURS", "12")
	t.Setenv("SEARCH_TERM", "SRE")
	t.Setenv("USE_BROWSER", "true")
	t.Setenv("VERBOSE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 25, cfg.MaxResults)
	assert.Equal(t, 12, cfg.AcquireIntervalHours)
	assert.Equal(t, "SRE", cfg.SearchTerm)
	assert.True(t, cfg.UseBrowser)
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsNonNumericPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobsradar")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }, "MAX_RESULTS"},
		{"negative interval", func(c *Config) { c.AcquireIntervalHours = -1 }, "ACQUIRE_INTERVAL_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DatabaseURL:          "postgres://localhost/jobsradar",
				Port:                 DefaultPort,
				MaxResults:           DefaultMaxResults,
				AcquireIntervalHours: DefaultAcquireInterval,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSearchLocations(t *testing.T) {
	cfg := &Config{SearchLocation: "Chile, Remote ,Argentina"}
	assert.Equal(t, []string{"Chile", "Remote", "Argentina"}, cfg.SearchLocations())

	cfg = &Config{SearchLocation: " , "}
	assert.Equal(t, []string{DefaultSearchLocation}, cfg.SearchLocations())
}
