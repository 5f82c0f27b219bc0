// Package history persists check runs in a SQLite database so that the
// outcome of earlier runs can be listed and inspected.
package history

import (
	"context"
	"time"

	"github.com/devscast/siteconf/internal/linkcheck"
)

// Run is the persisted summary of one check run.
type Run struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration"`
	ConfigPath   string            `json:"config_path"`
	SiteDir      string            `json:"site_dir"`
	Outcome      string            `json:"outcome"`
	LinksChecked int               `json:"links_checked"`
	Issues       []linkcheck.Issue `json:"issues,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// IssueCount returns the number of recorded issues.
func (r *Run) IssueCount() int { return len(r.Issues) }

// Store defines the interface for persisting and retrieving runs.
type Store interface {
	// Record persists a run. Recording an existing ID replaces it.
	Record(ctx context.Context, run *Run) error

	// Recent returns up to n runs, newest first.
	Recent(ctx context.Context, n int) ([]*Run, error)

	// Get returns the run with the given ID or a not-found error.
	Get(ctx context.Context, id string) (*Run, error)

	// Close closes the store and releases resources.
	Close() error
}
