package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AcquisitionRun is the audit record for one acquisition invocation. It is
// created as a placeholder at run start, completed exactly once on the run's
// single exit path, and never mutated afterward.
type AcquisitionRun struct {
	ID            uuid.UUID  `json:"id"`
	QueryTerm     string     `json:"query_term"`
	QueryLocation string     `json:"query_location"`
	MaxResults    int        `json:"max_results"`
	FoundCount    int        `json:"found_count"`
	SavedCount    int        `json:"saved_count"`
	Succeeded     bool       `json:"succeeded"`
	ErrorDetail   *string    `json:"error_detail,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// RunCompletion carries the terminal fields written at run completion.
type RunCompletion struct {
	FoundCount  int
	SavedCount  int
	Succeeded   bool
	ErrorDetail string // empty unless Succeeded is false
}

// CreateRun inserts the placeholder run record and returns its ID.
func (s *Store) CreateRun(ctx context.Context, term, location string, maxResults int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO acquisition_runs (id, query_term, query_location, max_results, succeeded, started_at)
		 VALUES ($1, $2, $3, $4, FALSE, NOW())`,
		id, term, location, maxResults,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun writes the terminal state of a run. completed_at is set here
// and only here.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, c RunCompletion) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE acquisition_runs
		 SET found_count = $2, saved_count = $3, succeeded = $4,
		     error_detail = $5, completed_at = NOW()
		 WHERE id = $1`,
		id, c.FoundCount, c.SavedCount, c.Succeeded, nilIfEmpty(c.ErrorDetail),
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves one run record.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*AcquisitionRun, error) {
	var r AcquisitionRun
	err := s.pool.QueryRow(ctx,
		`SELECT id, query_term, query_location, max_results, found_count, saved_count,
		        succeeded, error_detail, started_at, completed_at
		 FROM acquisition_runs WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.QueryTerm, &r.QueryLocation, &r.MaxResults, &r.FoundCount,
		&r.SavedCount, &r.Succeeded, &r.ErrorDetail, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns recent runs, newest first, for operational visibility.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]AcquisitionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, query_term, query_location, max_results, found_count, saved_count,
		        succeeded, error_detail, started_at, completed_at
		 FROM acquisition_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []AcquisitionRun
	for rows.Next() {
		var r AcquisitionRun
		if err := rows.Scan(&r.ID, &r.QueryTerm, &r.QueryLocation, &r.MaxResults,
			&r.FoundCount, &r.SavedCount, &r.Succeeded, &r.ErrorDetail,
			&r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
