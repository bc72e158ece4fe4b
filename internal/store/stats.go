package store

import (
	"context"
	"fmt"
)

// NameCount is one entry in a top-N aggregation.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes the stored postings for the statistics endpoint.
type Stats struct {
	TotalPostings     int         `json:"total_postings"`
	WithoutEnglish    int         `json:"without_english"`
	EnglishPercentage float64     `json:"english_percentage"`
	TopCompanies      []NameCount `json:"top_companies"`
	TopLocations      []NameCount `json:"top_locations"`
}

const topNLimit = 5

// GetStats aggregates posting counts, the English-requirement split, and the
// most frequent companies and locations.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE NOT requires_english)
		 FROM postings`,
	).Scan(&stats.TotalPostings, &stats.WithoutEnglish)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate postings: %w", err)
	}

	if stats.TotalPostings > 0 {
		withEnglish := stats.TotalPostings - stats.WithoutEnglish
		stats.EnglishPercentage = float64(withEnglish) / float64(stats.TotalPostings) * 100
	}

	stats.TopCompanies, err = s.topN(ctx, "company")
	if err != nil {
		return nil, err
	}
	stats.TopLocations, err = s.topN(ctx, "location")
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// topN aggregates the most frequent values of a column. The column name is
// fixed by the callers, never user input.
func (s *Store) topN(ctx context.Context, column string) ([]NameCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+column+`, COUNT(*) AS n
		 FROM postings
		 WHERE `+column+` <> ''
		 GROUP BY `+column+`
		 ORDER BY n DESC, `+column+`
		 LIMIT `+fmt.Sprint(topNLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", column, err)
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s aggregate: %w", column, err)
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}
