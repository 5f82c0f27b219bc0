package check

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/history"
	"github.com/devscast/siteconf/internal/linkcheck"
	"github.com/devscast/siteconf/internal/metrics"
	"github.com/devscast/siteconf/internal/notify"
)

var siteFiles = map[string]string{
	"static/img/logo.png":        "png",
	"src/css/custom.css":         ":root {}",
	"sidebars.yaml":              "tutorialSidebar:\n  - type: autogenerated\n    dir: .\n",
	"docs/intro.md":              "# Intro\n\nNext: [setup](./tutorial/setup.md).\n",
	"docs/tutorial/setup.md":     "# Setup\n\nBack to [intro](../intro.md).\n",
	"blog/2021-08-26-welcome.md": "# Welcome\n\nRead the [docs](/docs/intro).\n",
	"src/pages/index.js":         "export default function Home() {}",
}

func writeSite(t *testing.T, mutate func(*config.Config), extra map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.ExampleConfig()
	if mutate != nil {
		mutate(cfg)
	}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	files := map[string]string{config.DefaultConfigFile: string(data)}
	for k, v := range siteFiles {
		files[k] = v
	}
	for k, v := range extra {
		files[k] = v
	}
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return filepath.Join(dir, config.DefaultConfigFile)
}

type recordingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	stages   []string
	outcomes []metrics.ResultLabel
	broken   map[string]int
}

func (r *recordingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage+":"+string(result))
}

func (r *recordingRecorder) IncRunOutcome(outcome metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingRecorder) SetBrokenLinks(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.broken == nil {
		r.broken = map[string]int{}
	}
	r.broken[kind] = n
}

type capturePublisher struct {
	events []*notify.BrokenLinkEvent
}

func (c *capturePublisher) PublishBrokenLink(_ context.Context, ev *notify.BrokenLinkEvent) error {
	c.events = append(c.events, ev)
	return nil
}
func (c *capturePublisher) Close() error { return nil }

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRun_CleanSite(t *testing.T) {
	path := writeSite(t, nil, nil)
	rec := &recordingRecorder{}
	var logs bytes.Buffer

	report, err := NewRunner(WithLogger(quietLogger(&logs)), WithRecorder(rec)).Run(t.Context(), Options{ConfigPath: path})
	require.NoError(t, err, logs.String())
	require.Equal(t, metrics.ResultSuccess, report.Outcome)
	require.False(t, report.Failed())
	require.NotEmpty(t, report.RunID)
	require.Equal(t, filepath.Dir(path), report.SiteDir)
	require.Empty(t, report.Issues())
	require.NotNil(t, report.Site)

	var names []Stage
	for _, st := range report.Stages {
		names = append(names, st.Stage)
	}
	require.Equal(t, []Stage{StageLoad, StageValidate, StageResolve, StageLinks}, names)
	require.Equal(t, []string{"load:success", "validate:success", "resolve:success", "links:success"}, rec.stages)
	require.Equal(t, []metrics.ResultLabel{metrics.ResultSuccess}, rec.outcomes)
	require.Equal(t, 0, rec.broken["broken_link"])
	require.Contains(t, logs.String(), "run_id="+report.RunID)
}

func TestRun_BrokenLinkUnderThrowFails(t *testing.T) {
	path := writeSite(t, func(cfg *config.Config) {
		cfg.ThemeConfig.Navbar.Items[1].To = "/news"
	}, nil)
	pub := &capturePublisher{}
	rec := &recordingRecorder{}
	var logs bytes.Buffer

	report, err := NewRunner(WithLogger(quietLogger(&logs)), WithRecorder(rec), WithPublisher(pub)).
		Run(t.Context(), Options{ConfigPath: path})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryLinks))
	require.Equal(t, ferrors.ExitLinks, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	require.Equal(t, metrics.ResultFatal, report.Outcome)
	require.True(t, report.Failed())
	require.True(t, report.Links.Fatal())
	require.Equal(t, 2, rec.broken["broken_link"])
	require.Len(t, pub.events, 2)
	require.Equal(t, report.RunID, pub.events[0].RunID)
	require.Equal(t, "Devscast Engineering", pub.events[0].SiteTitle)
}

func TestRun_BrokenMarkdownLinkUnderWarnSucceeds(t *testing.T) {
	path := writeSite(t, nil, map[string]string{
		"docs/tutorial/deploy.md": "# Deploy\n\nSee [missing](./missing.md).\n",
	})
	var logs bytes.Buffer

	report, err := NewRunner(WithLogger(quietLogger(&logs))).Run(t.Context(), Options{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, metrics.ResultWarning, report.Outcome)
	require.False(t, report.Failed())
	require.Len(t, report.Issues(), 2)
	var locales []string
	for _, issue := range report.Issues() {
		require.Equal(t, linkcheck.KindBrokenMarkdownLink, issue.Kind)
		locales = append(locales, issue.Locale)
	}
	require.ElementsMatch(t, []string{"en", "fr"}, locales)
	require.Contains(t, logs.String(), "level=WARN")
	require.Equal(t, metrics.ResultWarning, report.Stages[len(report.Stages)-1].Result)
}

func TestRun_InvalidConfigStopsAtValidate(t *testing.T) {
	path := writeSite(t, func(cfg *config.Config) {
		cfg.I18n.DefaultLocale = "de"
	}, nil)
	rec := &recordingRecorder{}

	report, err := NewRunner(WithLogger(quietLogger(&bytes.Buffer{})), WithRecorder(rec)).Run(t.Context(), Options{ConfigPath: path})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.Equal(t, []string{"load:success", "validate:fatal"}, rec.stages)
	require.Nil(t, report.Site)
	require.Nil(t, report.Links)
	require.Equal(t, metrics.ResultFatal, report.Outcome)
}

func TestRun_MissingConfig(t *testing.T) {
	report, err := NewRunner(WithLogger(quietLogger(&bytes.Buffer{}))).
		Run(t.Context(), Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	require.Len(t, report.Stages, 1)
	require.Equal(t, metrics.ResultFatal, report.Stages[0].Result)
}

func TestRun_MissingReferencedFile(t *testing.T) {
	path := writeSite(t, nil, nil)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(path), "src", "css", "custom.css")))

	_, err := NewRunner(WithLogger(quietLogger(&bytes.Buffer{}))).Run(t.Context(), Options{ConfigPath: path})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestRun_Canceled(t *testing.T) {
	path := writeSite(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(WithLogger(quietLogger(&bytes.Buffer{}))).Run(ctx, Options{ConfigPath: path})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, metrics.ResultCanceled, report.Outcome)
	require.Empty(t, report.Stages)
}

func TestRun_RecordsHistory(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	path := writeSite(t, nil, map[string]string{
		"docs/tutorial/deploy.md": "# Deploy\n\nSee [missing](./missing.md).\n",
	})
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	r := NewRunner(WithLogger(quietLogger(&bytes.Buffer{})), WithHistory(store))
	r.now = func() time.Time { return fixed }
	r.newID = func() string { return "run-fixed" }

	_, err = r.Run(t.Context(), Options{ConfigPath: path})
	require.NoError(t, err)

	run, err := store.Get(t.Context(), "run-fixed")
	require.NoError(t, err)
	require.Equal(t, "warning", run.Outcome)
	require.Equal(t, 2, run.IssueCount())
	require.True(t, run.StartedAt.Equal(fixed))
	require.Positive(t, run.LinksChecked)
}
