// Package report renders check reports, resolved configurations and route
// tables for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/devscast/siteconf/internal/check"
	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/linkcheck"
	"github.com/devscast/siteconf/internal/metrics"
)

// Formatter formats check reports for output.
type Formatter interface {
	Format(w io.Writer, report *check.Report) error
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// Format outputs the report in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, report *check.Report) error {
	tw := &textWriter{w: w}
	title := report.SiteDir
	if report.Config != nil {
		title = fmt.Sprintf("%s (%s)", report.Config.Title, report.SiteDir)
	}
	tw.printf("Checking site: %s\n", title)
	tw.printf("%s\n\n", strings.Repeat("━", 60))

	for _, group := range groupBySource(report.Issues()) {
		tw.printf("%s %s\n", icon(group.issues), group.source)
		for _, issue := range group.issues {
			where := ""
			if issue.Line > 0 {
				where = fmt.Sprintf("line %d, ", issue.Line)
			}
			tw.printf("  %s [%s] %s (%slocale %s)\n", issue.Kind, issue.Severity, issue.Message, where, issue.Locale)
			if issue.Resolved != "" && issue.Resolved != issue.Target {
				tw.printf("    %s -> %s\n", issue.Target, issue.Resolved)
			} else {
				tw.printf("    %s\n", issue.Target)
			}
		}
		tw.printf("\n")
	}

	tw.printf("%s\n", strings.Repeat("━", 60))
	tw.printf("Results:\n")
	for _, st := range report.Stages {
		tw.printf("  %-9s %-8s %s\n", st.Stage, st.Result, st.Duration.Round(100*time.Microsecond))
	}
	if report.Site != nil {
		tw.printf("  %d locale%s, %d route%s\n",
			len(report.Site.Locales), pluralize(len(report.Site.Locales)),
			report.Site.Routes.Len(), pluralize(report.Site.Routes.Len()))
	}
	if report.Links != nil {
		tw.printf("  %d link%s checked\n", report.Links.LinksChecked, pluralize(report.Links.LinksChecked))
		if n := report.Links.CountBySeverity(config.SeverityThrow); n > 0 {
			tw.printf("  %d error%s (fails the run)\n", n, pluralize(n))
		}
		if n := report.Links.CountBySeverity(config.SeverityWarn); n > 0 {
			tw.printf("  %d warning%s\n", n, pluralize(n))
		}
		if n := report.Links.CountBySeverity(config.SeverityLog); n > 0 {
			tw.printf("  %d info\n", n)
		}
	}
	tw.printf("\n%s\n", verdict(report))
	return tw.err
}

func verdict(report *check.Report) string {
	switch report.Outcome {
	case metrics.ResultSuccess:
		return "✨ Site configuration and links are valid."
	case metrics.ResultWarning:
		return "⚠️  Site has link warnings. Consider fixing them before publishing."
	case metrics.ResultCanceled:
		return "Check canceled."
	}
	if report.Links != nil && report.Links.Fatal() {
		return "❌ Site has broken links that fail the build."
	}
	stage := check.StageLoad
	if n := len(report.Stages); n > 0 {
		stage = report.Stages[n-1].Stage
	}
	return fmt.Sprintf("❌ Check failed during %s: %v", stage, report.Err)
}

func icon(issues []linkcheck.Issue) string {
	worst := "ℹ"
	for _, issue := range issues {
		switch issue.Severity {
		case config.SeverityThrow:
			return "✗"
		case config.SeverityWarn:
			worst = "⚠"
		}
	}
	return worst
}

type sourceGroup struct {
	source string
	issues []linkcheck.Issue
}

// groupBySource groups issues by their source in sorted order, keeping the
// check order inside each group.
func groupBySource(issues []linkcheck.Issue) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for _, issue := range issues {
		i, ok := index[issue.Source]
		if !ok {
			i = len(groups)
			index[issue.Source] = i
			groups = append(groups, sourceGroup{source: issue.Source})
		}
		groups[i].issues = append(groups[i].issues, issue)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].source < groups[b].source })
	return groups
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	RunID        string              `json:"run_id"`
	ConfigPath   string              `json:"config_path"`
	SiteDir      string              `json:"site_dir"`
	Outcome      string              `json:"outcome"`
	DurationMS   int64               `json:"duration_ms"`
	Stages       []JSONStage         `json:"stages"`
	Routes       int                 `json:"routes"`
	LinksChecked int                 `json:"links_checked"`
	ErrorCount   int                 `json:"error_count"`
	WarningCount int                 `json:"warning_count"`
	InfoCount    int                 `json:"info_count"`
	Issues       []linkcheck.Issue   `json:"issues"`
	BySource     map[string][]string `json:"by_source,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// JSONStage represents one stage timing in JSON format.
type JSONStage struct {
	Stage      string `json:"stage"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
}

// Format outputs the report in JSON format.
func (f *JSONFormatter) Format(w io.Writer, report *check.Report) error {
	output := JSONOutput{
		RunID:      report.RunID,
		ConfigPath: report.ConfigPath,
		SiteDir:    report.SiteDir,
		Outcome:    string(report.Outcome),
		DurationMS: report.Duration.Milliseconds(),
		Issues:     []linkcheck.Issue{},
	}
	for _, st := range report.Stages {
		output.Stages = append(output.Stages, JSONStage{
			Stage:      string(st.Stage),
			Result:     string(st.Result),
			DurationMS: st.Duration.Milliseconds(),
		})
	}
	if report.Site != nil {
		output.Routes = report.Site.Routes.Len()
	}
	if report.Links != nil {
		output.LinksChecked = report.Links.LinksChecked
		output.ErrorCount = report.Links.CountBySeverity(config.SeverityThrow)
		output.WarningCount = report.Links.CountBySeverity(config.SeverityWarn)
		output.InfoCount = report.Links.CountBySeverity(config.SeverityLog)
		output.Issues = append(output.Issues, report.Links.Issues...)
		for _, g := range groupBySource(report.Links.Issues) {
			if output.BySource == nil {
				output.BySource = make(map[string][]string)
			}
			for _, issue := range g.issues {
				output.BySource[g.source] = append(output.BySource[g.source], issue.Target)
			}
		}
	}
	if report.Err != nil {
		output.Error = report.Err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
