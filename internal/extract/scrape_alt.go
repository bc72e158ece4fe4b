package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrojasb/jobs-radar/internal/fetch"
	"github.com/mrojasb/jobs-radar/internal/posting"
)

// AltScrape is the secondary structural extraction: a plain HTTP fetch of the
// search page and a deliberately loose selector pass that tolerates markup
// drift. It finds list/block elements whose class mentions "job" and keeps
// the ones whose text looks like a listing for the query term.
type AltScrape struct {
	baseURL string
}

// NewAltScrape constructs the alternative-selector strategy.
func NewAltScrape(baseURL string) *AltScrape {
	return &AltScrape{baseURL: baseURL}
}

func (s *AltScrape) Name() string { return "alt-scrape" }

// Extract implements Strategy.
func (s *AltScrape) Extract(ctx context.Context, params Params) ([]posting.RawRecord, error) {
	target := searchURL(s.baseURL, params.Term, params.Location)

	result, err := fetch.URL(ctx, target, nil)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "search page fetch failed", Cause: err}
	}

	doc, err := fetch.ParseDocument(result.HTML)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "HTML parse failed", Cause: err}
	}

	term := strings.ToLower(params.Term)
	records := make([]posting.RawRecord, 0, params.MaxResults)

	doc.Find("li, div").EachWithBreak(func(i int, el *goquery.Selection) bool {
		if len(records) >= params.MaxResults {
			return false
		}
		class, _ := el.Attr("class")
		if !strings.Contains(strings.ToLower(class), "job") {
			return true
		}
		text := fetch.CleanText(el.Text())
		if term != "" && !strings.Contains(strings.ToLower(text), term) {
			return true
		}
		records = append(records, &posting.ParsedElement{Text: text})
		return true
	})

	return records, nil
}
