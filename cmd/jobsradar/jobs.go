package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrojasb/jobs-radar/internal/observability"
	"github.com/mrojasb/jobs-radar/internal/store"
)

var jobsCommand = &cobra.Command{
	Use:   "jobs",
	Short: "List stored postings",
	RunE:  runJobsCmd,
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over stored postings",
	RunE:  runStatsCmd,
}

var (
	jobsNoEnglish bool
	jobsCompany   string
	jobsLocation  string
	jobsSearch    string
	jobsLimit     int
)

func init() {
	jobsCommand.Flags().BoolVar(&jobsNoEnglish, "no-english", false, "Only postings that do not require English")
	jobsCommand.Flags().StringVar(&jobsCompany, "company", "", "Filter by company substring")
	jobsCommand.Flags().StringVar(&jobsLocation, "location", "", "Filter by location substring")
	jobsCommand.Flags().StringVar(&jobsSearch, "search", "", "Free-text search over title, company and description")
	jobsCommand.Flags().IntVar(&jobsLimit, "limit", 0, "Maximum postings to show")

	rootCmd.AddCommand(jobsCommand)
	rootCmd.AddCommand(statsCommand)
}

func runJobsCmd(cmd *cobra.Command, _ []string) error {
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

	filter := store.ListFilter{
		Company:  jobsCompany,
		Location: jobsLocation,
		Search:   jobsSearch,
		Limit:    jobsLimit,
	}
	if cmd.Flags().Changed("no-english") {
		filter.NoEnglish = &jobsNoEnglish
	}

	postings, err := s.ListPostings(ctx, filter)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintPostings(postings)
	return nil
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
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

	stats, err := s.GetStats(ctx)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintStats(stats)
	return nil
}
