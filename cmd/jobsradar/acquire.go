package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrojasb/jobs-radar/internal/extract"
	"github.com/mrojasb/jobs-radar/internal/observability"
)

var acquireCommand = &cobra.Command{
	Use:   "acquire",
	Short: "Run one acquisition and store new postings",
	Long: `Runs the extraction chain once for the given search term and location,
deduplicates against the database, and records the run. Network strategies
that fail are skipped; with nothing configured the run falls back to
synthetic sample data so the pipeline stays exercisable offline.`,
	RunE: runAcquireCmd,
}

var (
	acquireTerm       string
	acquireLocation   string
	acquireMaxResults int
	acquireUseBrowser bool
	acquireVerbose    bool
)

func init() {
	acquireCommand.Flags().StringVarP(&acquireTerm, "term", "t", "", "Search term (defaults to SEARCH_TERM)")
	acquireCommand.Flags().StringVarP(&acquireLocation, "location", "l", "", "Search location (defaults to SEARCH_LOCATION)")
	acquireCommand.Flags().IntVar(&acquireMaxResults, "max-results", 0, "Maximum postings per run (defaults to MAX_RESULTS)")
	acquireCommand.Flags().BoolVar(&acquireUseBrowser, "use-browser", false, "Use headless browser scraping (requires Chrome)")
	acquireCommand.Flags().BoolVarP(&acquireVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(acquireCommand)
}

func runAcquireCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = acquireUseBrowser
	}
	if acquireVerbose {
		cfg.Verbose = true
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	params := extract.Params{
		Term:       cfg.SearchTerm,
		Location:   cfg.SearchLocation,
		MaxResults: cfg.MaxResults,
	}
	if acquireTerm != "" {
		params.Term = acquireTerm
	}
	if acquireLocation != "" {
		params.Location = acquireLocation
	}
	if acquireMaxResults > 0 {
		params.MaxResults = acquireMaxResults
	}

	sum := newAcquirer(s, cfg).Acquire(ctx, params, credentialsFrom(cfg))

	observability.NewPrinter(os.Stdout).PrintSummary(&sum)

	if !sum.Succeeded {
		return fmt.Errorf("acquisition failed: %s", sum.Error)
	}
	return nil
}
