package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrojasb/jobs-radar/internal/observability"
)

var sweepCommand = &cobra.Command{
	Use:   "sweep",
	Short: "Run one acquisition per configured location",
	Long: `Runs the extraction chain sequentially for every location in
SEARCH_LOCATION (comma-separated), pacing the runs so the source is not
hammered. Each location gets its own audit record.`,
	RunE: runSweepCmd,
}

var (
	sweepTerm      string
	sweepLocations string
	sweepMax       int
)

func init() {
	sweepCommand.Flags().StringVarP(&sweepTerm, "term", "t", "", "Search term (defaults to SEARCH_TERM)")
	sweepCommand.Flags().StringVarP(&sweepLocations, "locations", "l", "", "Comma-separated locations (defaults to SEARCH_LOCATION)")
	sweepCommand.Flags().IntVar(&sweepMax, "max-results", 0, "Maximum postings per location (defaults to MAX_RESULTS)")

	rootCmd.AddCommand(sweepCommand)
}

func runSweepCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	term := cfg.SearchTerm
	if sweepTerm != "" {
		term = sweepTerm
	}
	locations := cfg.SearchLocations()
	if sweepLocations != "" {
		locations = nil
		for _, l := range strings.Split(sweepLocations, ",") {
			if l = strings.TrimSpace(l); l != "" {
				locations = append(locations, l)
			}
		}
	}
	maxPer := cfg.MaxResults
	if sweepMax > 0 {
		maxPer = sweepMax
	}

	summaries := newAcquirer(s, cfg).Sweep(ctx, term, locations, maxPer, credentialsFrom(cfg))

	printer := observability.NewPrinter(os.Stdout)
	failed := 0
	for i := range summaries {
		printer.PrintSummary(&summaries[i])
		if !summaries[i].Succeeded {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sweep runs failed", failed, len(summaries))
	}
	return nil
}
