package posting

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrojasb/jobs-radar/internal/classify"
)

// sourceBaseURL is the canonical link prefix used when a strategy captured an
// identifier but no URL.
const sourceBaseURL = "https://www.linkedin.com/jobs/view/"

// Normalizer maps raw strategy output into canonical Postings.
//
// Now is injectable so tests (and the synthetic fallback) can pin the clock;
// it defaults to time.Now.
type Normalizer struct {
	Now func() time.Time
}

// NewNormalizer returns a Normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize converts one raw record into a Posting, applying the shared
// rules: description truncation, external-ID synthesis, source-URL
// construction, posted-date fallback, and language classification.
// index disambiguates synthesized IDs within a batch.
func (n *Normalizer) Normalize(rec RawRecord, index int) (*Posting, error) {
	now := n.Now().UTC()

	p, err := rec.convert(now)
	if err != nil {
		return nil, err
	}

	p.Description = Truncate(p.Description, MaxDescriptionLen)

	if p.ExternalID == "" {
		p.ExternalID = synthesizeID(rec.Source(), index, now)
	}
	if p.SourceURL == "" {
		p.SourceURL = sourceBaseURL + p.ExternalID
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = now
	}

	p.RequiresEnglish = classify.RequiresEnglish(p.Title, p.Description)
	p.AcquiredAt = now

	return p, nil
}

// NormalizeBatch converts a batch of raw records, skipping malformed ones.
// Skipped records are logged and not counted as found.
func (n *Normalizer) NormalizeBatch(recs []RawRecord) []Posting {
	out := make([]Posting, 0, len(recs))
	for i, rec := range recs {
		p, err := n.Normalize(rec, i)
		if err != nil {
			log.Printf("[normalize] skipping record %d: %v", i, err)
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Truncate bounds s to at most max bytes without splitting a UTF-8 rune:
// a cut landing inside a multi-byte sequence backs up to the rune start, so
// the result is always valid UTF-8 for storage. Truncation happens before
// persistence so the bound holds for every stored posting.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// synthesizeID builds a strategy-tagged identifier for records the source
// gave no stable ID: "<prefix>_<n>_<unix>". The prefix keeps IDs from
// different strategies from colliding.
func synthesizeID(src Source, index int, now time.Time) string {
	return fmt.Sprintf("%s_%d_%d", src, index, now.Unix())
}

// coerceDate parses a date-like string captured during extraction. It accepts
// RFC 3339 (the datetime attribute of <time> elements) and plain dates, and
// falls back to now when absent or unparsable.
func coerceDate(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return now
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	return now
}
