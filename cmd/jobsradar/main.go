// Package main provides the entry point for the jobs-radar CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobsradar",
	Short: "LinkedIn job acquisition pipeline",
	Long:  "jobsradar acquires DevOps job postings from LinkedIn through a chain of extraction strategies, classifies English requirements, and serves the deduplicated results over a REST API.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
