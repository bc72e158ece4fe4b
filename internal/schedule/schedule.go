// Package schedule wires up the cron job that periodically runs an
// acquisition sweep over the configured locations.
package schedule

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mrojasb/jobs-radar/internal/acquire"
	"github.com/mrojasb/jobs-radar/internal/extract"
)

// Scheduler wraps robfig/cron and manages the acquisition loop.
type Scheduler struct {
	cron      *cron.Cron
	acquirer  *acquire.Acquirer
	creds     extract.Credentials
	term      string
	locations []string
	maxPer    int
	spec      string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that sweeps every intervalHours hours.
func New(acquirer *acquire.Acquirer, creds extract.Credentials, term string, locations []string, maxPer, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		acquirer:  acquirer,
		creds:     creds,
		term:      term,
		locations: locations,
		maxPer:    maxPer,
		spec:      fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so the database is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	log.Printf("[scheduler] Sweep started: term=%q locations=%d", s.term, len(s.locations))

	summaries := s.acquirer.Sweep(ctx, s.term, s.locations, s.maxPer, s.creds)

	var found, saved int
	for _, sum := range summaries {
		found += sum.FoundCount
		saved += sum.SavedCount
		if !sum.Succeeded {
			log.Printf("[scheduler] Run %s failed: %s", sum.RunID, sum.Error)
		}
	}

	log.Printf("[scheduler] Sweep complete: found=%d saved=%d", found, saved)
}
