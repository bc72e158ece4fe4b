// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrojasb/jobs-radar/internal/acquire"
	"github.com/mrojasb/jobs-radar/internal/posting"
	"github.com/mrojasb/jobs-radar/internal/store"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary outputs a human-readable summary of one acquisition run.
func (p *Printer) PrintSummary(sum *acquire.Summary) {
	if sum == nil {
		return
	}

	var sb strings.Builder

	status := "SUCCEEDED"
	if !sum.Succeeded {
		status = "FAILED"
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", sum.Source))
	sb.WriteString(fmt.Sprintf("Found:    %d\n", sum.FoundCount))
	sb.WriteString(fmt.Sprintf("Saved:    %d new\n", sum.SavedCount))
	sb.WriteString(fmt.Sprintf("No Engl.: %d of %d\n", sum.WithoutEnglish, sum.FoundCount))
	if sum.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", sum.Error))
	}

	p.printBox("ACQUISITION RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPostings outputs the first postings of a listing, one block each.
func (p *Printer) PrintPostings(postings []posting.Posting) {
	if len(postings) == 0 {
		p.printBox("JOB POSTINGS", "No postings found.")
		return
	}

	var sb strings.Builder

	count := min(len(postings), maxItemsToShow)
	for i := 0; i < count; i++ {
		job := postings[i]
		sb.WriteString(fmt.Sprintf("%s\n", job.Title))
		sb.WriteString(fmt.Sprintf("  %s | %s\n", job.Company, job.Location))
		if job.SalaryRange != nil {
			sb.WriteString(fmt.Sprintf("  %s\n", *job.SalaryRange))
		}
		if job.RequiresEnglish {
			sb.WriteString("  Requires English\n")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(postings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(postings)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("JOB POSTINGS (%d)", len(postings)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs aggregate statistics over the stored postings.
func (p *Printer) PrintStats(stats *store.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total postings:   %d\n", stats.TotalPostings))
	sb.WriteString(fmt.Sprintf("Without English:  %d (%.1f%% require it)\n",
		stats.WithoutEnglish, stats.EnglishPercentage))

	if len(stats.TopCompanies) > 0 {
		sb.WriteString("\nTop companies:\n")
		for _, c := range stats.TopCompanies {
			sb.WriteString(fmt.Sprintf("  %-30s %d\n", c.Name, c.Count))
		}
	}
	if len(stats.TopLocations) > 0 {
		sb.WriteString("\nTop locations:\n")
		for _, l := range stats.TopLocations {
			sb.WriteString(fmt.Sprintf("  %-30s %d\n", l.Name, l.Count))
		}
	}

	p.printBox("DATABASE STATS", strings.TrimSuffix(sb.String(), "\n"))
}
