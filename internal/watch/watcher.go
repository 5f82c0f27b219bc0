// Package watch re-runs the site check when the configuration, the files it
// references or the site content change, and optionally on a fixed schedule.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/content"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/logfields"
)

// DefaultDebounce is the quiet window between the last change and the re-check.
const DefaultDebounce = 500 * time.Millisecond

// Trigger names what started a check.
const (
	TriggerStartup  = "startup"
	TriggerChange   = "change"
	TriggerSchedule = "schedule"
)

// CheckFunc runs one check. Its error is logged; the watcher keeps running.
type CheckFunc func(ctx context.Context, trigger string) error

// Options configures a Watcher.
type Options struct {
	ConfigPath string
	// SiteDir is the site root. Empty means the configuration file's directory.
	SiteDir string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Interval re-runs the check periodically when positive.
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher monitors the site and re-runs the check on change.
type Watcher struct {
	opts     Options
	check    CheckFunc
	logger   *slog.Logger
	fs       *fsnotify.Watcher
	triggers chan string

	mu      sync.Mutex
	watched map[string]bool
}

// New creates a Watcher. Run starts it.
func New(opts Options, check CheckFunc) (*Watcher, error) {
	if check == nil {
		return nil, ferrors.ValidationError("check function is required").Build()
	}
	configPath, err := filepath.Abs(opts.ConfigPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve config path").Build()
	}
	opts.ConfigPath = configPath
	if opts.SiteDir == "" {
		opts.SiteDir = filepath.Dir(configPath)
	}
	if opts.SiteDir, err = filepath.Abs(opts.SiteDir); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve site directory").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	return &Watcher{
		opts:     opts,
		check:    check,
		logger:   opts.Logger,
		fs:       fw,
		triggers: make(chan string, 1),
		watched:  make(map[string]bool),
	}, nil
}

// Run performs an initial check, then re-checks on every debounced change
// (and on schedule) until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()
	w.sync()

	if w.opts.Interval > 0 {
		s, err := w.startScheduler()
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Shutdown(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching site for changes",
		logfields.Path(w.opts.SiteDir),
		logfields.Count(len(w.Paths())),
		slog.Duration("interval", w.opts.Interval))
	w.runCheck(ctx, TriggerStartup)

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}
			debounce.Reset(w.opts.Debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		case <-debounce.C:
			w.runCheck(ctx, TriggerChange)
			// The configuration may now reference new files or directories.
			w.sync()
		case trigger := <-w.triggers:
			w.runCheck(ctx, trigger)
		}
	}
}

func (w *Watcher) runCheck(ctx context.Context, trigger string) {
	start := time.Now()
	err := w.check(ctx, trigger)
	attrs := []any{logfields.Trigger(trigger), logfields.DurationMS(float64(time.Since(start).Microseconds()) / 1000)}
	if err != nil {
		w.logger.Warn("Check failed", append(attrs, logfields.Error(err))...)
		return
	}
	w.logger.Info("Check passed", attrs...)
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.enqueue, TriggerSchedule),
		gocron.WithName("siteconf-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to schedule periodic check").
			WithContext("interval", w.opts.Interval.String()).
			Build()
	}
	s.Start()
	return s, nil
}

// enqueue requests a check from the run loop; a request already pending absorbs it.
func (w *Watcher) enqueue(trigger string) {
	select {
	case w.triggers <- trigger:
	default:
	}
}

// Paths returns the watched directories, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for p := range w.watched {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// sync adds every directory the current configuration makes relevant. An
// unreadable configuration still leaves its directory watched so that a fix
// triggers a re-check.
func (w *Watcher) sync() {
	w.add(filepath.Dir(w.opts.ConfigPath))

	cfg, err := config.Read(w.opts.ConfigPath)
	if err != nil {
		w.logger.Debug("Watching configuration directory only", logfields.Error(err))
		return
	}
	site := func(p string) string {
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(w.opts.SiteDir, filepath.FromSlash(p))
	}

	if d := cfg.Docs(); d != nil {
		w.addTree(site(d.Path))
		if d.SidebarPath != "" {
			w.add(filepath.Dir(site(d.SidebarPath)))
		}
	}
	if b := cfg.Blog(); b != nil {
		w.addTree(site(b.Path))
	}
	if p := cfg.Pages(); p != nil {
		w.addTree(site(p.Path))
	}
	for _, css := range cfg.CustomCSS() {
		w.add(filepath.Dir(site(css)))
	}
	for _, dir := range cfg.StaticDirectories {
		w.addTree(site(dir))
	}
	w.addTree(site(content.I18nDir))
}

func (w *Watcher) add(dir string) {
	if dir == "" || dir == "." {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
		}
		return
	}
	w.watched[dir] = true
}

func (w *Watcher) addTree(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		w.add(p)
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// relevant filters out attribute-only changes and editor scratch files.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		base == "4913": // vim write probe
		return false
	}
	return true
}
