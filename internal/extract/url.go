package extract

import (
	"net/url"
	"strings"
)

// defaultBaseURL is the live source. Tests point strategies at an httptest
// server instead.
const defaultBaseURL = "https://www.linkedin.com"

// searchURL builds the public job search URL for a query. The filter recipe
// matches what the source's own search UI emits: postings from the last 24
// hours, full-time, remote included.
func searchURL(base, term, location string) string {
	if base == "" {
		base = defaultBaseURL
	}

	q := url.Values{}
	q.Set("keywords", term)
	if location != "" && !strings.EqualFold(location, "worldwide") {
		q.Set("location", location)
	}
	q.Set("f_TPR", "r86400") // last 24 hours
	q.Set("f_JT", "F")       // full-time
	q.Set("f_WRA", "true")   // remote included

	return base + "/jobs/search?" + q.Encode()
}
