// Package extract implements the multi-strategy acquisition of raw job
// postings from the external source.
//
// Strategies are tried in a fixed priority order; the first one returning a
// non-empty batch wins. Every failure is local to its strategy and absorbed
// by the chain, and the terminal synthetic strategy never fails, so the chain
// as a whole cannot fail its caller.
package extract

import (
	"context"
	"log"

	"github.com/mrojasb/jobs-radar/internal/posting"
)

// Params are the search parameters for one acquisition run.
type Params struct {
	Term       string
	Location   string
	MaxResults int
}

// Credentials are opaque pass-through values for the credential-requiring
// strategies. Validation and refresh belong to the identity provider, not to
// this package.
type Credentials struct {
	Username    string
	Secret      string
	AccessToken string
}

// Strategy is one method of obtaining raw postings from the source.
//
// A returned error, or an empty batch, means "this strategy cannot serve this
// query right now" and moves the chain to the next strategy. Strategies must
// skip individual bad records rather than failing the whole batch.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, params Params) ([]posting.RawRecord, error)
}

// Chain tries strategies in order and returns the first non-empty result.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain over the given strategies, tried in order.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Options configures the default strategy order.
type Options struct {
	Credentials Credentials
	// BaseURL overrides the source base URL; used by tests. Empty means the
	// real source.
	BaseURL string
	// UseBrowser enables the headless-browser direct-scrape strategy. When
	// false the chain starts at the alternative HTTP scrape.
	UseBrowser bool
	Verbose    bool
}

// NewDefaultChain assembles the production strategy order:
// direct scrape, alternative scrape, authenticated API, delegated-token API,
// synthetic fallback.
func NewDefaultChain(opts Options) *Chain {
	var strategies []Strategy
	if opts.UseBrowser {
		strategies = append(strategies, NewDirectScrape(opts.BaseURL, opts.Verbose))
	}
	strategies = append(strategies,
		NewAltScrape(opts.BaseURL),
		NewAPIStrategy(opts.BaseURL, opts.Credentials.Username, opts.Credentials.Secret),
		NewOAuthStrategy(opts.BaseURL, opts.Credentials.AccessToken),
		NewSampleStrategy(),
	)
	return NewChain(strategies...)
}

// Run executes the chain. It returns the winning batch and the name of the
// strategy that produced it. By construction it never returns an empty batch:
// the synthetic fallback always yields records.
func (c *Chain) Run(ctx context.Context, params Params) ([]posting.RawRecord, string) {
	for _, s := range c.strategies {
		records, err := s.Extract(ctx, params)
		if err != nil {
			log.Printf("[chain] strategy %s failed: %v", s.Name(), err)
			continue
		}
		if len(records) == 0 {
			log.Printf("[chain] strategy %s returned no results", s.Name())
			continue
		}
		log.Printf("[chain] strategy %s succeeded with %d records", s.Name(), len(records))
		return records, s.Name()
	}

	// Reachable only if the chain was built without the synthetic fallback.
	return nil, ""
}
