// Package acquire orchestrates one job-acquisition run: extraction through
// the strategy chain, normalization, classification, deduplicated
// persistence, and the audit record for the run.
package acquire

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mrojasb/jobs-radar/internal/extract"
	"github.com/mrojasb/jobs-radar/internal/posting"
	"github.com/mrojasb/jobs-radar/internal/store"
)

// DefaultMaxResults bounds a run when the caller does not specify a limit.
const DefaultMaxResults = 50

// sweepDelay paces consecutive runs in a multi-location sweep so the source's
// abuse detection is not triggered. Deliberately sequential; see Sweep.
const sweepDelay = 5 * time.Second

// RunRecorder persists the audit record for a run.
type RunRecorder interface {
	CreateRun(ctx context.Context, term, location string, maxResults int) (uuid.UUID, error)
	CompleteRun(ctx context.Context, id uuid.UUID, c store.RunCompletion) error
}

// PostingSaver is the deduplication and persistence gate.
type PostingSaver interface {
	SavePostings(ctx context.Context, batch []posting.Posting) (int, error)
}

// Storage combines the persistence surfaces the orchestrator needs.
type Storage interface {
	RunRecorder
	PostingSaver
}

// ChainRunner abstracts the strategy chain.
type ChainRunner interface {
	Run(ctx context.Context, params extract.Params) ([]posting.RawRecord, string)
}

// Summary is what every invocation returns to the caller, success or not.
// Callers must inspect Succeeded and SavedCount: duplicates yield
// SavedCount < FoundCount, which is not an error.
type Summary struct {
	RunID          uuid.UUID `json:"run_id"`
	Succeeded      bool      `json:"succeeded"`
	FoundCount     int       `json:"found_count"`
	SavedCount     int       `json:"saved_count"`
	WithoutEnglish int       `json:"without_english"`
	Source         string    `json:"source"`
	Error          string    `json:"error,omitempty"`
}

// Acquirer runs acquisition pipelines against a storage backend.
type Acquirer struct {
	storage    Storage
	normalizer *posting.Normalizer
	// newChain builds a fresh chain per invocation so browser sessions and
	// credentials stay scoped to one run. Swapped out in tests.
	newChain func(opts extract.Options) ChainRunner
	// UseBrowser enables the headless direct-scrape strategy.
	UseBrowser bool
	Verbose    bool
	// SweepDelay overrides the pacing delay between sweep iterations.
	SweepDelay time.Duration
}

// New constructs an Acquirer with the default strategy chain.
func New(storage Storage) *Acquirer {
	return &Acquirer{
		storage:    storage,
		normalizer: posting.NewNormalizer(),
		newChain: func(opts extract.Options) ChainRunner {
			return extract.NewDefaultChain(opts)
		},
		SweepDelay: sweepDelay,
	}
}

// WithChainBuilder replaces how the strategy chain is built per run.
func (a *Acquirer) WithChainBuilder(build func(opts extract.Options) ChainRunner) *Acquirer {
	a.newChain = build
	return a
}

// Acquire executes one run.
//
// The run proceeds Started -> Extracting -> Persisting -> Completed.
// Extraction cannot fail the run: the chain absorbs every strategy failure
// and falls back to synthetic data. Only a persistence failure yields a
// non-success Summary, and the audit record is completed on every exit path.
func (a *Acquirer) Acquire(ctx context.Context, params extract.Params, creds extract.Credentials) (sum Summary) {
	if params.MaxResults <= 0 {
		params.MaxResults = DefaultMaxResults
	}

	runID, err := a.storage.CreateRun(ctx, params.Term, params.Location, params.MaxResults)
	if err != nil {
		// Without a run record there is nothing to complete; the failure is
		// still a persistence failure from the caller's point of view.
		return Summary{Succeeded: false, Error: "failed to record run start: " + err.Error()}
	}
	sum.RunID = runID

	// Completion is the run's single exit path: the terminal state is
	// written exactly once whether persistence succeeded or failed.
	defer func() {
		completion := store.RunCompletion{
			FoundCount: sum.FoundCount,
			SavedCount: sum.SavedCount,
			Succeeded:  sum.Succeeded,
		}
		if !sum.Succeeded {
			completion.ErrorDetail = sum.Error
		}
		if err := a.storage.CompleteRun(ctx, runID, completion); err != nil {
			log.Printf("[acquire] failed to complete run %s: %v", runID, err)
		}
	}()

	chain := a.newChain(extract.Options{
		Credentials: creds,
		UseBrowser:  a.UseBrowser,
		Verbose:     a.Verbose,
	})
	records, source := chain.Run(ctx, params)
	sum.Source = source

	batch := a.normalizer.NormalizeBatch(records)
	sum.FoundCount = len(batch)
	for _, p := range batch {
		if !p.RequiresEnglish {
			sum.WithoutEnglish++
		}
	}

	saved, err := a.storage.SavePostings(ctx, batch)
	if err != nil {
		sum.Succeeded = false
		sum.Error = err.Error()
		return sum
	}

	sum.SavedCount = saved
	sum.Succeeded = true
	return sum
}

// Sweep runs one acquisition per location, sequentially, with a mandatory
// pacing delay between iterations. Sequential execution is a deliberate
// courtesy to the external source, not a missed optimization.
func (a *Acquirer) Sweep(ctx context.Context, term string, locations []string, maxPerLocation int, creds extract.Credentials) []Summary {
	summaries := make([]Summary, 0, len(locations))

	for i, location := range locations {
		if i > 0 {
			select {
			case <-ctx.Done():
				return summaries
			case <-time.After(a.SweepDelay):
			}
		}

		sum := a.Acquire(ctx, extract.Params{
			Term:       term,
			Location:   location,
			MaxResults: maxPerLocation,
		}, creds)
		summaries = append(summaries, sum)

		log.Printf("[sweep] %s/%s: succeeded=%v found=%d saved=%d",
			term, location, sum.Succeeded, sum.FoundCount, sum.SavedCount)
	}

	return summaries
}
