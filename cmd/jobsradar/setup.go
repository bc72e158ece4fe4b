package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/mrojasb/jobs-radar/internal/acquire"
	"github.com/mrojasb/jobs-radar/internal/config"
	"github.com/mrojasb/jobs-radar/internal/extract"
	"github.com/mrojasb/jobs-radar/internal/store"
)

// loadConfig loads and validates the environment configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore connects to PostgreSQL, ensures the schema, and attaches the
// optional Redis cache. The caller owns the returned store.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	s, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is optional: log and continue on the database alone.
			log.Printf("[setup] Redis unavailable, continuing without cache: %v", err)
		} else {
			s.WithCache(client)
		}
	}

	return s, nil
}

// newAcquirer builds the orchestrator from configuration.
func newAcquirer(s *store.Store, cfg *config.Config) *acquire.Acquirer {
	a := acquire.New(s)
	a.UseBrowser = cfg.UseBrowser
	a.Verbose = cfg.Verbose
	return a
}

// credentialsFrom maps configuration onto strategy credentials.
func credentialsFrom(cfg *config.Config) extract.Credentials {
	return extract.Credentials{
		Username:    cfg.LinkedInEmail,
		Secret:      cfg.LinkedInPassword,
		AccessToken: cfg.LinkedInAccessToken,
	}
}
