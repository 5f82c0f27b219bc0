package watch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/devscast/siteconf/internal/config"
)

type triggerLog struct {
	mu       sync.Mutex
	triggers []string
}

func (l *triggerLog) check(_ context.Context, trigger string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.triggers = append(l.triggers, trigger)
	return nil
}

func (l *triggerLog) count(trigger string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.triggers {
		if t == trigger {
			n++
		}
	}
	return n
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data, err := yaml.Marshal(config.ExampleConfig())
	require.NoError(t, err)
	for rel, body := range map[string]string{
		config.DefaultConfigFile:     string(data),
		"docs/intro.md":              "# Intro\n",
		"docs/guides/setup.md":       "# Setup\n",
		"docs/.drafts/wip.md":        "# WIP\n",
		"blog/2021-08-26-welcome.md": "# Welcome\n",
		"static/img/logo.png":        "png",
		"src/css/custom.css":         ":root {}",
		"i18n/fr/docs/intro.md":      "# Intro\n",
		"node_modules/pkg/index.js":  "",
		"sidebars.yaml":              "tutorialSidebar:\n  - intro\n",
	} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return filepath.Join(dir, config.DefaultConfigFile)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNew_RequiresCheck(t *testing.T) {
	_, err := New(Options{ConfigPath: "siteconf.yaml"}, nil)
	require.Error(t, err)
}

func TestSync_WatchesConfiguredDirectories(t *testing.T) {
	path := writeSite(t)
	dir := filepath.Dir(path)
	w, err := New(Options{ConfigPath: path, Logger: discardLogger()}, (&triggerLog{}).check)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fs.Close() })

	w.sync()
	paths := w.Paths()
	for _, want := range []string{"", "docs", "docs/guides", "blog", "static/img", "src/css", "i18n/fr/docs"} {
		require.Contains(t, paths, filepath.Join(dir, filepath.FromSlash(want)))
	}
	require.NotContains(t, paths, filepath.Join(dir, "docs", ".drafts"))
	require.NotContains(t, paths, filepath.Join(dir, "node_modules"))
}

func TestSync_BrokenConfigWatchesItsDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("title: [unterminated"), 0o600))

	w, err := New(Options{ConfigPath: path, Logger: discardLogger()}, (&triggerLog{}).check)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fs.Close() })

	w.sync()
	require.Equal(t, []string{dir}, w.Paths())
}

func TestRun_RechecksOnChange(t *testing.T) {
	path := writeSite(t)
	log := &triggerLog{}
	w, err := New(Options{ConfigPath: path, Debounce: 50 * time.Millisecond, Logger: discardLogger()}, log.check)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return log.count(TriggerStartup) == 1 }, 2*time.Second, 10*time.Millisecond)

	// A burst of writes collapses into a single re-check.
	target := filepath.Join(filepath.Dir(path), "docs", "intro.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("# Intro\n\nedit\n"), 0o600))
	}
	require.Eventually(t, func() bool { return log.count(TriggerChange) == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, 1, log.count(TriggerChange))

	cancel()
	require.NoError(t, <-done)
}

func TestRun_ScheduledChecks(t *testing.T) {
	path := writeSite(t)
	log := &triggerLog{}
	w, err := New(Options{ConfigPath: path, Interval: 100 * time.Millisecond, Logger: discardLogger()}, log.check)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return log.count(TriggerSchedule) >= 2 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRelevant(t *testing.T) {
	require.True(t, relevant(fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Write}))
	require.True(t, relevant(fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Remove}))
	require.False(t, relevant(fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Chmod}))
	require.False(t, relevant(fsnotify.Event{Name: "docs/intro.md~", Op: fsnotify.Create}))
	require.False(t, relevant(fsnotify.Event{Name: "docs/.intro.md.swp", Op: fsnotify.Write}))
}
