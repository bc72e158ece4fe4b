package posting

import "time"

// RawRecord is the tagged union of strategy-specific raw extraction output.
// Each variant knows how to convert itself into a partially-filled Posting;
// the Normalizer then applies the shared rules (truncation, ID synthesis,
// URL construction, date fallback, classification).
//
// The conversion method is unexported so the union stays closed: only the
// variants defined in this package can be normalized.
type RawRecord interface {
	Source() Source
	convert(now time.Time) (*Posting, error)
}

// ScrapedCard is a job card lifted from the rendered search results page.
// Fields are best-effort: any of them may be empty when the markup drifted.
type ScrapedCard struct {
	ExternalID  string // data-job-id attribute, if present
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	PostedText  string // raw datetime attribute or visible date text
}

func (c *ScrapedCard) Source() Source { return SourceScrape }

func (c *ScrapedCard) convert(now time.Time) (*Posting, error) {
	if !hasText(c.Title, c.Company, c.Description) {
		return nil, &MalformedRecordError{Source: c.Source(), Reason: "card has no usable text"}
	}
	return &Posting{
		ExternalID:     c.ExternalID,
		Title:          defaultString(c.Title, defaultTitle),
		Company:        defaultString(c.Company, defaultCompany),
		Location:       c.Location,
		Description:    c.Description,
		EmploymentType: DefaultEmploymentType,
		SeniorityLevel: DefaultSeniorityLevel,
		SourceURL:      c.URL,
		PostedAt:       coerceDate(c.PostedText, now),
	}, nil
}

// ParsedElement is a looser variant produced by the alternative-selector
// scrape: a block of page text that looks like a job listing.
type ParsedElement struct {
	Text string
}

func (e *ParsedElement) Source() Source { return SourceScrapeAlt }

func (e *ParsedElement) convert(now time.Time) (*Posting, error) {
	if len(e.Text) < minParsedTextLen {
		return nil, &MalformedRecordError{Source: e.Source(), Reason: "element text too short"}
	}
	return &Posting{
		Title:          defaultTitle,
		Company:        defaultCompany,
		Description:    e.Text,
		EmploymentType: DefaultEmploymentType,
		SeniorityLevel: DefaultSeniorityLevel,
		PostedAt:       now,
	}, nil
}

// APIRecord is a job entry returned by the authenticated search API.
type APIRecord struct {
	TrackingID     string
	Title          string
	Company        string
	Location       string
	Description    string
	URL            string
	EmploymentType string
	SeniorityLevel string
	SalaryRange    string // empty when the source omits salary
	ListedAt       time.Time
}

func (r *APIRecord) Source() Source { return SourceAPI }

func (r *APIRecord) convert(now time.Time) (*Posting, error) {
	if !hasText(r.Title, r.Company, r.Description) {
		return nil, &MalformedRecordError{Source: r.Source(), Reason: "record has no usable text"}
	}
	p := &Posting{
		ExternalID:     r.TrackingID,
		Title:          defaultString(r.Title, defaultTitle),
		Company:        defaultString(r.Company, defaultCompany),
		Location:       r.Location,
		Description:    r.Description,
		EmploymentType: defaultString(r.EmploymentType, DefaultEmploymentType),
		SeniorityLevel: defaultString(r.SeniorityLevel, DefaultSeniorityLevel),
		SourceURL:      r.URL,
		PostedAt:       r.ListedAt,
	}
	if r.SalaryRange != "" {
		s := r.SalaryRange
		p.SalaryRange = &s
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = now
	}
	return p, nil
}

// OAuthRecord is a job element returned by the delegated-token REST API.
type OAuthRecord struct {
	JobPostingID   string
	Title          string
	CompanyName    string
	Location       string
	Description    string
	JobPostingURL  string
	EmploymentType string
	SeniorityLevel string
	SalaryRange    string
}

func (r *OAuthRecord) Source() Source { return SourceOAuth }

func (r *OAuthRecord) convert(now time.Time) (*Posting, error) {
	if !hasText(r.Title, r.CompanyName, r.Description) {
		return nil, &MalformedRecordError{Source: r.Source(), Reason: "element has no usable text"}
	}
	p := &Posting{
		ExternalID:     r.JobPostingID,
		Title:          defaultString(r.Title, defaultTitle),
		Company:        defaultString(r.CompanyName, defaultCompany),
		Location:       r.Location,
		Description:    r.Description,
		EmploymentType: defaultString(r.EmploymentType, DefaultEmploymentType),
		SeniorityLevel: defaultString(r.SeniorityLevel, DefaultSeniorityLevel),
		SourceURL:      r.JobPostingURL,
		PostedAt:       now,
	}
	if r.SalaryRange != "" {
		s := r.SalaryRange
		p.SalaryRange = &s
	}
	return p, nil
}

// SyntheticRecord is a deterministic sample posting emitted by the terminal
// fallback strategy. It is always complete by construction; its identifier
// is synthesized from the batch position like every other ID-less record.
type SyntheticRecord struct {
	Title          string
	Company        string
	Location       string
	Description    string
	SeniorityLevel string
	PostedAt       time.Time
}

func (r *SyntheticRecord) Source() Source { return SourceSynthetic }

func (r *SyntheticRecord) convert(now time.Time) (*Posting, error) {
	p := &Posting{
		Title:          r.Title,
		Company:        r.Company,
		Location:       r.Location,
		Description:    r.Description,
		EmploymentType: DefaultEmploymentType,
		SeniorityLevel: defaultString(r.SeniorityLevel, DefaultSeniorityLevel),
		PostedAt:       r.PostedAt,
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = now
	}
	return p, nil
}

const (
	defaultTitle   = "Unknown role"
	defaultCompany = "Unknown company"

	// minParsedTextLen filters navigation fragments and other non-listing
	// elements matched by the loose alternative selectors.
	minParsedTextLen = 20
)

func hasText(fields ...string) bool {
	for _, f := range fields {
		if f != "" {
			return true
		}
	}
	return false
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
