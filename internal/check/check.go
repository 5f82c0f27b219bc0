// Package check runs the full site check: load and validate the
// configuration, resolve it against the site directory, then check links.
// Every run is timed per stage, recorded in metrics and (optionally) in the
// run history, and its broken links are published as events.
package check

import (
	"time"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/linkcheck"
	"github.com/devscast/siteconf/internal/metrics"
	"github.com/devscast/siteconf/internal/site"
)

// Stage names a step of a check run.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
	StageResolve  Stage = "resolve"
	StageLinks    Stage = "links"
)

// Options selects what a run checks.
type Options struct {
	// ConfigPath is the configuration file to load.
	ConfigPath string
	// SiteDir is the site root. Empty means the configuration file's directory.
	SiteDir string
	// Now is the reference time for the copyright year. Zero means time.Now.
	Now time.Time
}

// StageTiming records how one stage went.
type StageTiming struct {
	Stage    Stage               `json:"stage"`
	Duration time.Duration       `json:"duration"`
	Result   metrics.ResultLabel `json:"result"`
}

// Report is the outcome of a run. A report is returned even when the run
// fails; fields after the failing stage are nil.
type Report struct {
	RunID      string
	ConfigPath string
	SiteDir    string
	StartedAt  time.Time
	Duration   time.Duration
	Stages     []StageTiming
	Outcome    metrics.ResultLabel

	Config *config.Config
	Site   *site.Site
	Links  *linkcheck.Result

	// Err is the error that ended the run, if any.
	Err error
}

// Failed reports whether the run ended with a fatal or canceled outcome.
func (r *Report) Failed() bool {
	return r.Outcome == metrics.ResultFatal || r.Outcome == metrics.ResultCanceled
}

// Issues returns the link issues of the run (nil when the links stage did not run).
func (r *Report) Issues() []linkcheck.Issue {
	if r.Links == nil {
		return nil
	}
	return r.Links.Issues
}
