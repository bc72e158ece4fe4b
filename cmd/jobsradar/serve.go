package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrojasb/jobs-radar/internal/oauth"
	"github.com/mrojasb/jobs-radar/internal/schedule"
	"github.com/mrojasb/jobs-radar/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API for browsing stored postings and triggering
acquisition runs. Unless ACQUIRE_INTERVAL_HOURS is 0, a background scheduler
also sweeps the configured locations periodically.`,
	RunE: runServeCmd,
}

var servePort int

func init() {
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (defaults to PORT)")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	acquirer := newAcquirer(s, cfg)
	creds := credentialsFrom(cfg)

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Catalog:     s,
		Acquirer:    acquirer,
		OAuthClient: oauth.NewClient(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURI, ""),
		Credentials: server.Credentials{
			Username:    creds.Username,
			Secret:      creds.Secret,
			AccessToken: creds.AccessToken,
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	if cfg.AcquireIntervalHours > 0 {
		sched := schedule.New(acquirer, creds, cfg.SearchTerm, cfg.SearchLocations(),
			cfg.MaxResults, cfg.AcquireIntervalHours)
		g.Go(func() error {
			if err := sched.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			sched.Stop()
			return nil
		})
	} else {
		log.Println("[serve] Scheduler disabled (ACQUIRE_INTERVAL_HOURS=0)")
	}

	return g.Wait()
}
