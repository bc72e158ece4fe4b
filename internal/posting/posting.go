// Package posting defines the canonical job posting record and the
// normalization of heterogeneous raw extraction output into it.
package posting

import (
	"time"
)

// MaxDescriptionLen bounds the stored description length.
const MaxDescriptionLen = 1000

// DefaultEmploymentType is used when an extraction path cannot determine the
// employment type. Defaulting (rather than leaving it empty) keeps downstream
// filtering usable.
const DefaultEmploymentType = "Full-time"

// DefaultSeniorityLevel is used when an extraction path cannot determine the
// seniority level.
const DefaultSeniorityLevel = "Mid Level"

// Source tags the extraction strategy a record came from. It prefixes
// synthesized external IDs so IDs from different strategies cannot collide.
type Source string

const (
	SourceScrape    Source = "scrape"
	SourceScrapeAlt Source = "parsed"
	SourceAPI       Source = "api"
	SourceOAuth     Source = "oauth"
	SourceSynthetic Source = "sample"
)

// Posting is the canonical normalized job record.
//
// ExternalID is the stable source identifier and the deduplication key: two
// postings with the same ExternalID are the same real-world posting, and the
// second one is dropped by the persistence gate, never overwritten.
type Posting struct {
	ExternalID      string    `json:"external_id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	EmploymentType  string    `json:"employment_type,omitempty"`
	SeniorityLevel  string    `json:"seniority_level,omitempty"`
	SalaryRange     *string   `json:"salary_range,omitempty"`
	SourceURL       string    `json:"source_url"`
	PostedAt        time.Time `json:"posted_at"`
	RequiresEnglish bool      `json:"requires_english"`
	AcquiredAt      time.Time `json:"acquired_at"`
}
