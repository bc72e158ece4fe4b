package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrojasb/jobs-radar/internal/extract"
	"github.com/mrojasb/jobs-radar/internal/posting"
	"github.com/mrojasb/jobs-radar/internal/store"
)

// fakeStorage records run lifecycles and deduplicates by external ID in
// memory, mirroring the database gate closely enough for orchestrator tests.
type fakeStorage struct {
	seen       map[string]bool
	runs       map[uuid.UUID]*fakeRun
	createErr  error
	saveErr    error
	savedCalls int
}

type fakeRun struct {
	term       string
	location   string
	completed  bool
	completion store.RunCompletion
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		seen: make(map[string]bool),
		runs: make(map[uuid.UUID]*fakeRun),
	}
}

func (f *fakeStorage) CreateRun(_ context.Context, term, location string, _ int) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	f.runs[id] = &fakeRun{term: term, location: location}
	return id, nil
}

func (f *fakeStorage) CompleteRun(_ context.Context, id uuid.UUID, c store.RunCompletion) error {
	run, ok := f.runs[id]
	if !ok {
		return errors.New("unknown run")
	}
	run.completed = true
	run.completion = c
	return nil
}

func (f *fakeStorage) SavePostings(_ context.Context, batch []posting.Posting) (int, error) {
	f.savedCalls++
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	saved := 0
	for _, p := range batch {
		if p.ExternalID == "" || f.seen[p.ExternalID] {
			continue
		}
		f.seen[p.ExternalID] = true
		saved++
	}
	return saved, nil
}

type failingStrategy struct{ name string }

func (s failingStrategy) Name() string { return s.name }

func (s failingStrategy) Extract(context.Context, extract.Params) ([]posting.RawRecord, error) {
	return nil, &extract.StrategyError{Strategy: s.name, Message: "unreachable"}
}

// newTestAcquirer wires an Acquirer whose chain uses failing network
// strategies plus the synthetic fallback, all against a fixed clock.
func newTestAcquirer(storage Storage, now time.Time) *Acquirer {
	a := New(storage)
	a.normalizer = &posting.Normalizer{Now: func() time.Time { return now }}
	a.newChain = func(_ extract.Options) ChainRunner {
		sample := extract.NewSampleStrategy()
		sample.Now = func() time.Time { return now }
		return extract.NewChain(
			failingStrategy{name: "scrape"},
			failingStrategy{name: "api"},
			sample,
		)
	}
	return a
}

func TestAcquireOfflineFallsBackToSample(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)

	sum := a.Acquire(context.Background(), extract.Params{Term: "DevOps", Location: "Chile", MaxResults: 10}, extract.Credentials{})

	assert.True(t, sum.Succeeded)
	assert.Equal(t, "sample", sum.Source)
	assert.Equal(t, 7, sum.FoundCount)
	assert.Equal(t, sum.FoundCount, sum.SavedCount)
	assert.Empty(t, sum.Error)
}

func TestAcquireRepeatRunSavesNothing(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)
	params := extract.Params{Term: "DevOps", Location: "Chile", MaxResults: 10}

	first := a.Acquire(context.Background(), params, extract.Credentials{})
	second := a.Acquire(context.Background(), params, extract.Credentials{})

	require.True(t, first.Succeeded)
	require.True(t, second.Succeeded)
	assert.Equal(t, first.FoundCount, second.FoundCount)
	assert.Equal(t, first.FoundCount, first.SavedCount)
	assert.Zero(t, second.SavedCount)
}

func TestAcquireCompletesRunOnSuccess(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)

	sum := a.Acquire(context.Background(), extract.Params{Term: "SRE", Location: "Remote", MaxResults: 5}, extract.Credentials{})

	require.True(t, sum.Succeeded)
	run, ok := storage.runs[sum.RunID]
	require.True(t, ok)
	assert.True(t, run.completed)
	assert.True(t, run.completion.Succeeded)
	assert.Equal(t, sum.FoundCount, run.completion.FoundCount)
	assert.Equal(t, sum.SavedCount, run.completion.SavedCount)
	assert.Empty(t, run.completion.ErrorDetail)
	assert.Equal(t, "SRE", run.term)
	assert.Equal(t, "Remote", run.location)
}

func TestAcquireCompletesRunOnPersistenceFailure(t *testing.T) {
	storage := newFakeStorage()
	storage.saveErr = errors.New("connection reset")
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)

	sum := a.Acquire(context.Background(), extract.Params{Term: "DevOps", MaxResults: 5}, extract.Credentials{})

	assert.False(t, sum.Succeeded)
	assert.Contains(t, sum.Error, "connection reset")
	run, ok := storage.runs[sum.RunID]
	require.True(t, ok)
	assert.True(t, run.completed)
	assert.False(t, run.completion.Succeeded)
	assert.Equal(t, "connection reset", run.completion.ErrorDetail)
	// Extraction still happened; only persistence failed.
	assert.Equal(t, 5, run.completion.FoundCount)
	assert.Zero(t, run.completion.SavedCount)
}

func TestAcquireFailsWhenRunCannotBeRecorded(t *testing.T) {
	storage := newFakeStorage()
	storage.createErr = errors.New("database down")
	a := newTestAcquirer(storage, time.Now())

	sum := a.Acquire(context.Background(), extract.Params{Term: "DevOps"}, extract.Credentials{})

	assert.False(t, sum.Succeeded)
	assert.Contains(t, sum.Error, "database down")
	assert.Zero(t, storage.savedCalls)
}

func TestAcquireCountsPostingsWithoutEnglish(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)

	sum := a.Acquire(context.Background(), extract.Params{Term: "DevOps", MaxResults: 10}, extract.Credentials{})

	require.True(t, sum.Succeeded)
	assert.GreaterOrEqual(t, sum.WithoutEnglish, 0)
	assert.LessOrEqual(t, sum.WithoutEnglish, sum.FoundCount)
}

func TestAcquireDefaultsMaxResults(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)

	sum := a.Acquire(context.Background(), extract.Params{Term: "DevOps"}, extract.Credentials{})

	// The synthetic fallback is bounded by its template set regardless of
	// the defaulted limit.
	require.True(t, sum.Succeeded)
	assert.Equal(t, 7, sum.FoundCount)
}

func TestSweepRunsEveryLocation(t *testing.T) {
	storage := newFakeStorage()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	a := newTestAcquirer(storage, now)
	a.SweepDelay = time.Millisecond

	summaries := a.Sweep(context.Background(), "DevOps", []string{"Chile", "Remote", "Argentina"}, 5, extract.Credentials{})

	require.Len(t, summaries, 3)
	assert.Len(t, storage.runs, 3)
	for _, sum := range summaries {
		assert.True(t, sum.Succeeded)
	}
	// Same synthetic records in every location, so only the first sweep
	// iteration persists anything.
	assert.Equal(t, summaries[0].FoundCount, summaries[0].SavedCount)
	assert.Zero(t, summaries[1].SavedCount)
	assert.Zero(t, summaries[2].SavedCount)
}

func TestSweepStopsOnContextCancel(t *testing.T) {
	storage := newFakeStorage()
	a := newTestAcquirer(storage, time.Now())
	a.SweepDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries := a.Sweep(ctx, "DevOps", []string{"Chile", "Remote"}, 5, extract.Credentials{})

	// The first run executes; the pacing wait before the second observes
	// the cancelled context.
	assert.Len(t, summaries, 1)
}
