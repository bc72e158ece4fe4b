package store

import (
	"context"
	"fmt"
	"log"

	"github.com/mrojasb/jobs-radar/internal/posting"
)

// seenIDsKey is the Redis set holding external IDs already committed.
const seenIDsKey = "jobsradar:seen_external_ids"

// SavePostings is the deduplication and persistence gate.
//
// Each posting is inserted with ON CONFLICT DO NOTHING on external_id: the
// database uniqueness constraint covers the window between any pre-check and
// the commit, so a concurrent run inserting the same posting is "already
// exists", never an error. The whole batch commits in one transaction; any
// failure rolls back every staged insertion.
//
// Returns the count of newly inserted postings. Existing rows are never
// updated.
func (s *Store) SavePostings(ctx context.Context, batch []posting.Posting) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := 0
	cacheHits := 0
	var inserted []string

	for _, p := range batch {
		if p.ExternalID == "" {
			// The normalizer guarantees a non-empty ID; a gap here is a
			// programming error upstream, skipped rather than persisted.
			log.Printf("[store] skipping posting with empty external_id (%q)", p.Title)
			continue
		}

		// The seen-set is advisory only. Even on a cache hit the row is
		// offered to the database: ON CONFLICT makes a duplicate insert
		// free, and a stale cache entry must never suppress a posting the
		// database no longer holds.
		if s.seenInCache(ctx, p.ExternalID) {
			cacheHits++
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO postings (external_id, title, company, location, description,
			                       employment_type, seniority_level, salary_range,
			                       source_url, posted_at, requires_english, acquired_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (external_id) DO NOTHING`,
			p.ExternalID, p.Title, p.Company, p.Location, p.Description,
			nilIfEmpty(p.EmploymentType), nilIfEmpty(p.SeniorityLevel), p.SalaryRange,
			p.SourceURL, p.PostedAt, p.RequiresEnglish, p.AcquiredAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert posting %s: %w", p.ExternalID, err)
		}
		if tag.RowsAffected() > 0 {
			saved++
			inserted = append(inserted, p.ExternalID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit postings: %w", err)
	}

	if cacheHits > 0 {
		log.Printf("[store] %d of %d postings were already in the seen-ID cache", cacheHits, len(batch))
	}

	s.markSeen(ctx, inserted)
	return saved, nil
}

// CountPostings returns the total number of stored postings.
func (s *Store) CountPostings(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM postings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count postings: %w", err)
	}
	return count, nil
}

// seenInCache consults the optional Redis seen-set. The answer is advisory:
// it feeds the duplicate log line, never the decision to persist. Cache
// errors are treated as "unknown".
func (s *Store) seenInCache(ctx context.Context, externalID string) bool {
	if s.cache == nil {
		return false
	}
	seen, err := s.cache.SIsMember(ctx, seenIDsKey, externalID).Result()
	if err != nil {
		return false
	}
	return seen
}

// markSeen records committed IDs in the cache, best-effort.
func (s *Store) markSeen(ctx context.Context, ids []string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.cache.SAdd(ctx, seenIDsKey, members...).Err(); err != nil {
		log.Printf("[store] seen-ID cache update failed: %v", err)
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
