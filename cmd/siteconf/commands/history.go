package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/devscast/siteconf/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	ID      string `arg:"" optional:"" help:"Show a single run in detail"`
	Limit   int    `short:"n" default:"10" help:"Number of runs to list (0 lists every run)"`
	History string `default:"${history_path}" help:"SQLite history database"`
	Format  string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	store, err := openHistory(root.resolvePath(h.History))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if h.ID != "" {
		run, err := store.Get(ctx, h.ID)
		if err != nil {
			return err
		}
		if h.Format == "json" {
			return writeJSON(g.Out, run)
		}
		return writeRun(g.Out, run)
	}

	runs, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	if h.Format == "json" {
		if runs == nil {
			runs = []*history.Run{}
		}
		return writeJSON(g.Out, runs)
	}
	return writeRuns(g.Out, runs)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeRuns(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tOUTCOME\tISSUES\tLINKS\tDURATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Outcome, r.IssueCount(), r.LinksChecked, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func writeRun(w io.Writer, r *history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	_, _ = fmt.Fprintf(tw, "Started:\t%s\n", r.StartedAt.Local().Format(time.RFC3339))
	_, _ = fmt.Fprintf(tw, "Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(tw, "Config:\t%s\n", r.ConfigPath)
	_, _ = fmt.Fprintf(tw, "Site:\t%s\n", r.SiteDir)
	_, _ = fmt.Fprintf(tw, "Outcome:\t%s\n", r.Outcome)
	_, _ = fmt.Fprintf(tw, "Links checked:\t%d\n", r.LinksChecked)
	if r.Error != "" {
		_, _ = fmt.Fprintf(tw, "Error:\t%s\n", r.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, issue := range r.Issues {
		if _, err := fmt.Fprintf(w, "  [%s] %s %s: %s (%s)\n", issue.Severity, issue.Kind, issue.Source, issue.Target, issue.Locale); err != nil {
			return err
		}
	}
	return nil
}
