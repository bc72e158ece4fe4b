// Package classify decides whether a job posting explicitly demands English
// proficiency. The check is a conservative keyword heuristic: it is expected
// to miss implicit requirements, but a posting it flags really does mention
// the language. Downstream filtering relies on the negative signal (postings
// that do NOT demand English), so recall on the keyword set matters more than
// precision.
package classify

import "strings"

// KeywordTableVersion identifies the keyword set in use. Bump it whenever
// englishKeywords changes so stored classifications can be traced back to the
// table that produced them.
const KeywordTableVersion = 1

// englishKeywords is the single authoritative keyword table. Extraction
// strategies must not carry their own copies.
var englishKeywords = []string{
	"english",
	"inglés",
	"ingles",
	"native english",
	"fluent english",
	"english speaking",
	"english proficiency",
	"bilingual",
	"international team",
	"global team",
	"multinational",
}

// RequiresEnglish reports whether the combined title and description contain
// any keyword from the table. Matching is case-insensitive substring
// containment; the first hit wins.
func RequiresEnglish(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, kw := range englishKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the keyword table, for callers that want to
// display or audit it.
func Keywords() []string {
	out := make([]string, len(englishKeywords))
	copy(out, englishKeywords)
	return out
}
