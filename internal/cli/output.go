package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/bizevents/internal/ingest"
	"github.com/pfrederiksen/bizevents/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(s)
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// WriteReport writes an ingestion report in the specified format
func WriteReport(w io.Writer, report *ingest.Report, format OutputFormat, order SortOrder, verbose bool) error {
	sortEvents(report.Events, order)
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, report *ingest.Report, verbose bool) error {
	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Run %s%s\n\n", report.RunID, mode)

	for _, s := range report.Sites {
		if s.Failed() {
			fmt.Fprintf(w, "  %-22s FAILED: %s\n", s.Site, s.Error)
			continue
		}
		fmt.Fprintf(w, "  %-22s %3d candidates  %2d duplicates  %3d inserted  %3d updated  (%s)\n",
			s.Site, s.Candidates, s.Duplicates, s.Inserted, s.Updated, s.Duration.Round(time.Millisecond))
		if verbose && (s.Dropped > 0 || s.Filtered > 0 || s.Skipped > 0) {
			fmt.Fprintf(w, "  %-22s %3d dropped  %3d filtered  %3d skipped\n", "", s.Dropped, s.Filtered, s.Skipped)
		}
	}

	if len(report.Events) == 0 {
		fmt.Fprintln(w, "\nNo events found.")
	} else {
		fmt.Fprintf(w, "\nEvents (%d):\n", len(report.Events))
		for i := range report.Events {
			writeEvent(w, &report.Events[i], verbose)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events from %d sites, %d failed\n", len(report.Events), len(report.Sites), report.Failures())
	return nil
}

func writeEvent(w io.Writer, e *storage.Event, verbose bool) {
	when := "date unknown"
	if !e.Start.IsZero() {
		when = e.Start.Time.Format("Mon 2006-01-02 15:04")
	}
	fmt.Fprintf(w, "  %s  %s (%s)\n", when, e.Title, e.Organizer)
	if verbose {
		if e.ID != 0 {
			fmt.Fprintf(w, "       ID: %d\n", e.ID)
		}
		fmt.Fprintf(w, "       Link: %s\n", e.Link)
		if !e.End.IsZero() {
			fmt.Fprintf(w, "       Ends: %s\n", e.End)
		}
		if e.Market != "" || e.Industry != "" {
			fmt.Fprintf(w, "       Market: %s  Industry: %s\n", e.Market, e.Industry)
		}
	}
}

func writeSites(w io.Writer, sites []ingest.SiteInfo, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, sites)
	}
	configured := 0
	for _, s := range sites {
		mark := "-"
		if s.Configured {
			mark = "*"
			configured++
		}
		fmt.Fprintf(w, "%s %s\n", mark, s.Name)
	}
	fmt.Fprintf(w, "\nTotal: %d sites, %d configured\n", len(sites), configured)
	return nil
}
