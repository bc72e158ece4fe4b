package posting

import (
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNormalizer(t *testing.T) (*Normalizer, time.Time) {
	t.Helper()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	return &Normalizer{Now: func() time.Time { return now }}, now
}

func TestNormalize_ScrapedCard(t *testing.T) {
	n, now := fixedNormalizer(t)

	p, err := n.Normalize(&ScrapedCard{
		ExternalID:  "4021337",
		Title:       "DevOps Engineer",
		Company:     "TechChile SpA",
		Location:    "Santiago, Chile",
		Description: "Buscamos DevOps Engineer. Fluent English required.",
		URL:         "https://www.linkedin.com/jobs/view/4021337",
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "4021337", p.ExternalID)
	assert.Equal(t, "TechChile SpA", p.Company)
	assert.Equal(t, DefaultEmploymentType, p.EmploymentType)
	assert.True(t, p.RequiresEnglish)
	assert.Equal(t, now, p.PostedAt)
	assert.Equal(t, now, p.AcquiredAt)
	assert.Nil(t, p.SalaryRange)
}

func TestNormalize_SynthesizesIDAndURL(t *testing.T) {
	n, now := fixedNormalizer(t)

	p, err := n.Normalize(&ScrapedCard{Title: "SRE"}, 3)
	require.NoError(t, err)

	wantID := "scrape_3_" + strconv.FormatInt(now.Unix(), 10)
	assert.Equal(t, wantID, p.ExternalID)
	assert.Equal(t, sourceBaseURL+wantID, p.SourceURL)
}

func TestNormalize_TruncatesDescription(t *testing.T) {
	n, _ := fixedNormalizer(t)

	long := strings.Repeat("a", 5000)
	p, err := n.Normalize(&ScrapedCard{Title: "DevOps", Description: long}, 0)
	require.NoError(t, err)
	assert.Len(t, p.Description, MaxDescriptionLen)
}

func TestNormalize_TruncationKeepsValidUTF8(t *testing.T) {
	// A multi-byte rune straddling the byte bound must not be split: the
	// stored description has to stay valid UTF-8 or the database rejects it.
	n, _ := fixedNormalizer(t)

	long := strings.Repeat("a", MaxDescriptionLen-1) + "é" + strings.Repeat("x", 50)
	p, err := n.Normalize(&ScrapedCard{Title: "DevOps", Description: long}, 0)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(p.Description))
	assert.LessOrEqual(t, len(p.Description), MaxDescriptionLen)
	assert.True(t, strings.HasSuffix(p.Description, "a"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "hola", 10, "hola"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"cut inside rune backs up", "aé", 2, "a"},
		{"cut at rune end keeps it", "aé", 3, "aé"},
		{"cut before multi-byte rune", "Posición", 7, "Posici"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNormalize_DefaultsMissingTitle(t *testing.T) {
	// A text-bearing record with a missing field is defaulted, not dropped.
	n, _ := fixedNormalizer(t)

	p, err := n.Normalize(&ScrapedCard{Company: "ACME", Description: "Cloud role"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Unknown role", p.Title)
}

func TestNormalize_DropsContentlessRecord(t *testing.T) {
	// A record with no usable text at all is dropped, not defaulted.
	n, _ := fixedNormalizer(t)

	_, err := n.Normalize(&ScrapedCard{Location: "Chile"}, 0)
	require.Error(t, err)

	var malformed *MalformedRecordError
	assert.ErrorAs(t, err, &malformed)
	assert.Equal(t, SourceScrape, malformed.Source)
}

func TestNormalize_APIRecordSalary(t *testing.T) {
	n, _ := fixedNormalizer(t)

	p, err := n.Normalize(&APIRecord{
		TrackingID:  "991",
		Title:       "Platform Engineer",
		Company:     "FinTech",
		Description: "Plataforma cloud",
		SalaryRange: "CLP 2,500,000 - 3,500,000",
	}, 0)
	require.NoError(t, err)
	require.NotNil(t, p.SalaryRange)
	assert.Equal(t, "CLP 2,500,000 - 3,500,000", *p.SalaryRange)

	// Absent salary stays nil, never inferred.
	p2, err := n.Normalize(&APIRecord{TrackingID: "992", Title: "SRE"}, 1)
	require.NoError(t, err)
	assert.Nil(t, p2.SalaryRange)
}

func TestNormalize_ParsedElementPolicy(t *testing.T) {
	n, _ := fixedNormalizer(t)

	// Long enough text becomes a defaulted posting.
	p, err := n.Normalize(&ParsedElement{Text: "DevOps Engineer position at a cloud company in Santiago"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Unknown role", p.Title)

	// Too-short fragments are malformed and dropped.
	_, err = n.Normalize(&ParsedElement{Text: "Jobs"}, 2)
	require.Error(t, err)
}

func TestNormalizeBatch_SkipsMalformed(t *testing.T) {
	n, _ := fixedNormalizer(t)

	recs := []RawRecord{
		&ScrapedCard{Title: "DevOps Engineer", Company: "A"},
		&ScrapedCard{}, // malformed
		&ScrapedCard{Title: "SRE", Company: "B"},
	}
	batch := n.NormalizeBatch(recs)
	require.Len(t, batch, 2)
	assert.Equal(t, "DevOps Engineer", batch[0].Title)
	assert.Equal(t, "SRE", batch[1].Title)
}

func TestCoerceDate(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"rfc3339", "2025-01-02T15:04:05Z", time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"plain date", "2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"empty falls back", "", now},
		{"garbage falls back", "yesterday-ish", now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceDate(tt.text, now))
		})
	}
}
