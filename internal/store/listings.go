package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrojasb/jobs-radar/internal/posting"
)

// ListFilter narrows a posting listing query. Zero values mean "no filter".
type ListFilter struct {
	// NoEnglish, when set, filters on the English requirement: true selects
	// postings that do not require English, false selects those that do.
	NoEnglish *bool
	Company   string
	Location  string
	// Search matches title, company, and description, case-insensitively.
	Search string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// buildListQuery renders the WHERE clause and arguments for a filter.
// Split out for testability; the column list and ordering live in the caller.
func buildListQuery(f ListFilter) (where string, args []any) {
	var clauses []string

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}

	if f.NoEnglish != nil {
		add("requires_english = ?", !*f.NoEnglish)
	}
	if f.Company != "" {
		add("company ILIKE ?", "%"+f.Company+"%")
	}
	if f.Location != "" {
		add("location ILIKE ?", "%"+f.Location+"%")
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		args = append(args, pattern)
		n := strconv.Itoa(len(args))
		clauses = append(clauses, "(title ILIKE $"+n+" OR company ILIKE $"+n+" OR description ILIKE $"+n+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListPostings returns stored postings matching the filter, newest first by
// posted_at, with offset/limit pagination.
func (s *Store) ListPostings(ctx context.Context, f ListFilter) ([]posting.Posting, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := buildListQuery(f)
	args = append(args, limit, offset)

	query := `SELECT external_id, title, company, location, description,
	                 COALESCE(employment_type, ''), COALESCE(seniority_level, ''),
	                 salary_range, source_url, posted_at, requires_english, acquired_at
	          FROM postings` + where +
		` ORDER BY posted_at DESC
	          LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var out []posting.Posting
	for rows.Next() {
		var p posting.Posting
		if err := rows.Scan(&p.ExternalID, &p.Title, &p.Company, &p.Location,
			&p.Description, &p.EmploymentType, &p.SeniorityLevel, &p.SalaryRange,
			&p.SourceURL, &p.PostedAt, &p.RequiresEnglish, &p.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPosting retrieves one posting by its external ID.
func (s *Store) GetPosting(ctx context.Context, externalID string) (*posting.Posting, error) {
	var p posting.Posting
	err := s.pool.QueryRow(ctx,
		`SELECT external_id, title, company, location, description,
		        COALESCE(employment_type, ''), COALESCE(seniority_level, ''),
		        salary_range, source_url, posted_at, requires_english, acquired_at
		 FROM postings WHERE external_id = $1`, externalID,
	).Scan(&p.ExternalID, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.EmploymentType, &p.SeniorityLevel, &p.SalaryRange,
		&p.SourceURL, &p.PostedAt, &p.RequiresEnglish, &p.AcquiredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return &p, nil
}
