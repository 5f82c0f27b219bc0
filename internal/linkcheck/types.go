// Package linkcheck finds broken internal links and Markdown cross-references
// in a resolved site and grades them with the configured reporting policies.
package linkcheck

import (
	"github.com/devscast/siteconf/internal/config"
)

// IssueKind classifies a link problem. Each kind has its own reporting policy.
type IssueKind string

const (
	// KindBrokenLink is an internal link whose route does not exist
	// (on_broken_links).
	KindBrokenLink IssueKind = "broken_link"
	// KindBrokenMarkdownLink is a relative .md/.mdx reference that does not
	// resolve to a content file (on_broken_markdown_links).
	KindBrokenMarkdownLink IssueKind = "broken_markdown_link"
	// KindDuplicateRoute is a path produced by more than one source
	// (on_duplicate_routes).
	KindDuplicateRoute IssueKind = "duplicate_route"
)

// Issue is a single link problem.
type Issue struct {
	Kind     IssueKind                `json:"kind"`
	Severity config.ReportingSeverity `json:"severity"`
	Locale   string                   `json:"locale"`
	// Source is the site-relative file, or the configuration field, holding the link.
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`
	// Target is the link as written.
	Target string `json:"target"`
	// Resolved is the path the target was resolved to.
	Resolved string `json:"resolved,omitempty"`
	Message  string `json:"message"`
}

// Result contains every reported issue. Issues under the ignore policy are
// dropped before they reach the result.
type Result struct {
	Issues       []Issue
	LinksChecked int
}

// Fatal reports whether any issue is graded throw.
func (r *Result) Fatal() bool {
	for _, issue := range r.Issues {
		if issue.Severity.Fails() {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of issues graded s.
func (r *Result) CountBySeverity(s config.ReportingSeverity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// CountByKind returns the number of issues of kind k.
func (r *Result) CountByKind(k IssueKind) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Kind == k {
			count++
		}
	}
	return count
}

// FatalIssues returns the issues graded throw.
func (r *Result) FatalIssues() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity.Fails() {
			out = append(out, issue)
		}
	}
	return out
}
