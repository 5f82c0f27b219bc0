package check

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/history"
	"github.com/devscast/siteconf/internal/linkcheck"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/metrics"
	"github.com/devscast/siteconf/internal/notify"
	"github.com/devscast/siteconf/internal/observability"
	"github.com/devscast/siteconf/internal/site"
)

// Runner executes check runs.
type Runner struct {
	logger    *slog.Logger
	recorder  metrics.Recorder
	history   history.Store
	publisher notify.Publisher
	now       func() time.Time
	newID     func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder. Defaults to metrics.NoopRecorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithHistory records every run in store.
func WithHistory(store history.Store) Option {
	return func(r *Runner) { r.history = store }
}

// WithPublisher publishes broken-link events through p. Defaults to notify.NoopPublisher.
func WithPublisher(p notify.Publisher) Option {
	return func(r *Runner) {
		if p != nil {
			r.publisher = p
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run checks the site described by opts.
//
// The returned error is classified: configuration and validation problems
// keep their category, and a run whose link issues include a throw-graded one
// fails with a fatal CategoryLinks error. The report is always returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	start := r.now()
	report := &Report{
		RunID:      r.newID(),
		ConfigPath: opts.ConfigPath,
		SiteDir:    opts.SiteDir,
		StartedAt:  start,
	}
	if report.SiteDir == "" {
		report.SiteDir = filepath.Dir(opts.ConfigPath)
	}
	if opts.Now.IsZero() {
		opts.Now = start
	}

	ctx = observability.WithLogger(ctx, r.logger)
	ctx = observability.WithRunID(ctx, report.RunID)
	observability.InfoContext(ctx, "Starting site check",
		logfields.Path(opts.ConfigPath),
		slog.String("site_dir", report.SiteDir))

	err := r.runStages(ctx, opts, report)
	return report, r.finish(ctx, report, err)
}

func (r *Runner) runStages(ctx context.Context, opts Options, report *Report) error {
	err := r.stage(ctx, report, StageLoad, func(ctx context.Context) (err error) {
		if report.Config, err = config.Read(opts.ConfigPath); err != nil {
			return err
		}
		if err := config.InferRepositoryIdentity(report.Config, report.SiteDir); err != nil {
			observability.WarnContext(ctx, "Could not infer repository identity", logfields.Error(err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, report, StageValidate, func(context.Context) error {
		return config.ValidateConfig(report.Config)
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, report, StageResolve, func(ctx context.Context) (err error) {
		report.Site, err = site.Resolve(ctx, report.Config, report.SiteDir, site.Options{Now: opts.Now})
		return err
	})
	if err != nil {
		return err
	}

	return r.stage(ctx, report, StageLinks, func(ctx context.Context) (err error) {
		report.Links, err = linkcheck.NewChecker(observability.Logger(ctx)).Check(ctx, report.Site)
		if err != nil {
			return err
		}
		if report.Links.Fatal() {
			fatal := report.Links.FatalIssues()
			return ferrors.LinkError("broken links found").
				WithContext("issues", len(fatal)).
				WithContext("first", fatal[0].Target).
				Build()
		}
		return nil
	})
}

// stage runs fn with stage-scoped logging, timing and result metrics.
func (r *Runner) stage(ctx context.Context, report *Report, name Stage, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = observability.WithStage(ctx, string(name))
	observability.DebugContext(ctx, "Stage started")

	stageStart := r.now()
	err := fn(ctx)
	d := r.now().Sub(stageStart)

	result := stageResult(err)
	if name == StageLinks && err == nil && report.Links != nil && len(report.Links.Issues) > 0 {
		result = metrics.ResultWarning
	}
	report.Stages = append(report.Stages, StageTiming{Stage: name, Duration: d, Result: result})
	r.recorder.ObserveStageDuration(string(name), d)
	r.recorder.IncStageResult(string(name), result)

	attrs := []slog.Attr{logfields.DurationMS(float64(d.Microseconds()) / 1000), slog.String("result", string(result))}
	if err != nil {
		observability.DebugContext(ctx, "Stage failed", append(attrs, logfields.Error(err))...)
		return err
	}
	observability.DebugContext(ctx, "Stage completed", attrs...)
	return nil
}

func stageResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}

// finish settles the outcome and feeds metrics, events and history.
func (r *Runner) finish(ctx context.Context, report *Report, err error) error {
	report.Duration = r.now().Sub(report.StartedAt)
	report.Err = err
	switch {
	case err != nil:
		report.Outcome = stageResult(err)
	case len(report.Issues()) > 0:
		report.Outcome = metrics.ResultWarning
	default:
		report.Outcome = metrics.ResultSuccess
	}

	r.recorder.ObserveRunDuration(report.Duration)
	r.recorder.IncRunOutcome(report.Outcome)
	if report.Links != nil {
		for _, kind := range []linkcheck.IssueKind{linkcheck.KindBrokenLink, linkcheck.KindBrokenMarkdownLink, linkcheck.KindDuplicateRoute} {
			r.recorder.SetBrokenLinks(string(kind), report.Links.CountByKind(kind))
		}
		r.recorder.SetLinksChecked(report.Links.LinksChecked)
	}

	// Delivery and history use a context that survives cancellation of the run.
	bg := context.WithoutCancel(ctx)
	r.publish(bg, report)
	r.record(bg, report)

	attrs := []slog.Attr{
		slog.String("outcome", string(report.Outcome)),
		logfields.DurationMS(float64(report.Duration.Microseconds()) / 1000),
		logfields.Count(len(report.Issues())),
	}
	if err != nil {
		observability.ErrorContext(ctx, "Site check failed", append(attrs, logfields.Error(err))...)
		return err
	}
	observability.InfoContext(ctx, "Site check completed", attrs...)
	return nil
}

func (r *Runner) publish(ctx context.Context, report *Report) {
	if report.Links == nil || report.Config == nil {
		return
	}
	published := 0
	for _, issue := range report.Links.Issues {
		if issue.Kind == linkcheck.KindDuplicateRoute {
			continue
		}
		ev := notify.NewBrokenLinkEvent(report.RunID, report.Config.Title, report.Config.URL, issue, r.now())
		if err := r.publisher.PublishBrokenLink(ctx, ev); err != nil {
			observability.WarnContext(ctx, "Failed to publish broken link event", logfields.Link(issue.Target), logfields.Error(err))
			return
		}
		published++
	}
	if published > 0 {
		observability.DebugContext(ctx, "Published broken link events", logfields.Count(published))
	}
}

func (r *Runner) record(ctx context.Context, report *Report) {
	if r.history == nil {
		return
	}
	run := &history.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		Duration:   report.Duration,
		ConfigPath: report.ConfigPath,
		SiteDir:    report.SiteDir,
		Outcome:    string(report.Outcome),
		Issues:     report.Issues(),
	}
	if report.Links != nil {
		run.LinksChecked = report.Links.LinksChecked
	}
	if report.Err != nil {
		run.Error = report.Err.Error()
	}
	if err := r.history.Record(ctx, run); err != nil {
		observability.WarnContext(ctx, "Failed to record run history", logfields.Error(err))
	}
}
