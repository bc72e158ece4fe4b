package extract

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrojasb/jobs-radar/internal/fetch"
	"github.com/mrojasb/jobs-radar/internal/posting"
)

// cardSelectors are the primary selector set for job cards on the rendered
// search page, tried in order. The page markup changes often; the first
// selector with matches wins.
var cardSelectors = []string{
	".job-search-card",
	"[data-job-id]",
	".jobs-search-results-list .result-card",
	".job-result-card",
}

// browserSession abstracts fetch.Session so tests can stub the browser.
type browserSession interface {
	Navigate(url string, timeout time.Duration) (string, error)
	ScrollBottom(timeout time.Duration) (string, error)
	Close()
}

// DirectScrape renders the search page in a headless browser and extracts
// job cards with the primary selector set. Paging is done by scrolling with a
// fixed inter-request delay; it stops at MaxResults or after two consecutive
// scrolls that load no new cards.
type DirectScrape struct {
	baseURL     string
	verbose     bool
	pageDelay   time.Duration
	pageTimeout time.Duration

	// newSession is swapped out in tests to avoid launching Chrome.
	newSession func(ctx context.Context, verbose bool) (browserSession, error)
}

// scrapePageDelay paces scroll requests so repeated page loads do not trip
// the source's abuse detection.
const scrapePageDelay = 3 * time.Second

// maxStalledScrolls is the terminal paging condition: this many consecutive
// scrolls without new cards means the result list is exhausted or stalled.
const maxStalledScrolls = 2

// NewDirectScrape constructs the direct structural extraction strategy.
func NewDirectScrape(baseURL string, verbose bool) *DirectScrape {
	return &DirectScrape{
		baseURL:     baseURL,
		verbose:     verbose,
		pageDelay:   scrapePageDelay,
		pageTimeout: fetch.DefaultPageTimeout,
		newSession: func(ctx context.Context, verbose bool) (browserSession, error) {
			return fetch.NewSession(ctx, verbose)
		},
	}
}

func (s *DirectScrape) Name() string { return "direct-scrape" }

// Extract implements Strategy. The browser session is scoped to this call:
// created here, released before returning, never shared across runs.
func (s *DirectScrape) Extract(ctx context.Context, params Params) ([]posting.RawRecord, error) {
	session, err := s.newSession(ctx, s.verbose)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "browser session unavailable", Cause: err}
	}
	defer session.Close()

	target := searchURL(s.baseURL, params.Term, params.Location)
	html, err := session.Navigate(target, s.pageTimeout)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "search page load failed", Cause: err}
	}

	cards := countCards(html)
	stalled := 0
	for cards < params.MaxResults && stalled < maxStalledScrolls {
		select {
		case <-ctx.Done():
			return nil, &StrategyError{Strategy: s.Name(), Message: "canceled while paging", Cause: ctx.Err()}
		case <-time.After(s.pageDelay):
		}

		next, err := session.ScrollBottom(s.pageTimeout)
		if err != nil {
			// Keep whatever already rendered; a failed scroll is not fatal.
			log.Printf("[direct-scrape] scroll failed, using loaded results: %v", err)
			break
		}
		html = next

		loaded := countCards(html)
		if loaded <= cards {
			stalled++
		} else {
			stalled = 0
		}
		cards = loaded
	}

	records, err := parseCards(html, params.MaxResults)
	if err != nil {
		return nil, &StrategyError{Strategy: s.Name(), Message: "card extraction failed", Cause: err}
	}
	if len(records) == 0 {
		return nil, &StrategyError{Strategy: s.Name(), Message: "no job cards matched any selector"}
	}
	return records, nil
}

// countCards reports how many job cards the current HTML contains, using the
// first selector that matches anything.
func countCards(html string) int {
	doc, err := fetch.ParseDocument(html)
	if err != nil {
		return 0
	}
	sel := findCards(doc)
	if sel == nil {
		return 0
	}
	return sel.Length()
}

// findCards returns the card selection for the first matching selector.
func findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range cardSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// parseCards extracts up to max ScrapedCards from the rendered page.
// A malformed card is skipped; it never aborts the remaining cards.
func parseCards(html string, max int) ([]posting.RawRecord, error) {
	doc, err := fetch.ParseDocument(html)
	if err != nil {
		return nil, err
	}

	sel := findCards(doc)
	if sel == nil {
		return nil, nil
	}

	records := make([]posting.RawRecord, 0, min(sel.Length(), max))
	sel.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(records) >= max {
			return false
		}
		records = append(records, extractCard(card))
		return true
	})
	return records, nil
}

// extractCard performs best-effort field extraction from one card. Missing
// fields stay empty; the normalizer applies the documented defaults.
func extractCard(card *goquery.Selection) *posting.ScrapedCard {
	c := &posting.ScrapedCard{}

	if id, ok := card.Attr("data-job-id"); ok {
		c.ExternalID = id
	} else if urn, ok := card.Attr("data-entity-urn"); ok {
		// e.g. "urn:li:jobPosting:4021337"
		if idx := strings.LastIndex(urn, ":"); idx >= 0 {
			c.ExternalID = urn[idx+1:]
		}
	}

	c.Title = firstText(card, "h3", ".base-search-card__title", ".job-title", "[data-job-title]")
	c.Company = firstText(card, "h4", ".base-search-card__subtitle", ".company-name", ".job-company")
	c.Location = firstText(card, ".job-search-card__location", ".job-location", ".location")
	c.Description = firstText(card, ".job-search-card__snippet", ".job-snippet", "p")

	if href, ok := card.Find("a[href]").First().Attr("href"); ok {
		c.URL = href
	}
	if dt, ok := card.Find("time").First().Attr("datetime"); ok {
		c.PostedText = dt
	}

	return c
}

// firstText returns the cleaned text of the first selector with a non-empty
// match.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if text := fetch.CleanText(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
