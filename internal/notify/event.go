// Package notify publishes broken-link events so other systems (issue
// trackers, chat bots) can react to a failing site check.
package notify

import (
	"time"

	"github.com/devscast/siteconf/internal/linkcheck"
)

// DefaultSubject is the NATS subject broken-link events are published on.
const DefaultSubject = "siteconf.links.broken"

// BrokenLinkEvent represents a broken link discovered during a check run.
type BrokenLinkEvent struct {
	// Link information
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Resolved string `json:"resolved,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`

	// Source metadata
	Locale string `json:"locale"`
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`

	// Site context
	SiteTitle string `json:"site_title"`
	SiteURL   string `json:"site_url"`

	// Run context
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBrokenLinkEvent builds the event for one issue of a run.
func NewBrokenLinkEvent(runID, siteTitle, siteURL string, issue linkcheck.Issue, now time.Time) *BrokenLinkEvent {
	return &BrokenLinkEvent{
		Kind:      string(issue.Kind),
		Target:    issue.Target,
		Resolved:  issue.Resolved,
		Severity:  string(issue.Severity),
		Message:   issue.Message,
		Locale:    issue.Locale,
		Source:    issue.Source,
		Line:      issue.Line,
		SiteTitle: siteTitle,
		SiteURL:   siteURL,
		RunID:     runID,
		Timestamp: now,
	}
}
