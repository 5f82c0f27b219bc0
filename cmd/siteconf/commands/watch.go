package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/devscast/siteconf/internal/check"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/metrics"
	"github.com/devscast/siteconf/internal/report"
	"github.com/devscast/siteconf/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval    time.Duration `help:"Also re-check on this interval (0 disables)" default:"0s"`
	Debounce    time.Duration `help:"Quiet period after a change before re-checking" default:"500ms"`
	Format      string        `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9108)"`
	History     string        `help:"Record every run in this SQLite database (e.g. ${history_path})"`
	NATSURL     string        `name:"nats-url" help:"Publish broken-link events to this NATS server" env:"SITECONF_NATS_URL"`
	NATSSubject string        `name:"nats-subject" help:"Subject for broken-link events" default:"${nats_subject}"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner, recorder, cleanup, err := buildRunner(g, root, runnerOptions{
		metrics:     w.MetricsAddr != "",
		history:     w.History,
		natsURL:     w.NATSURL,
		natsSubject: w.NATSSubject,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	if w.MetricsAddr != "" {
		stop := serveMetrics(g, w.MetricsAddr, recorder)
		defer stop()
	}

	formatter := report.NewFormatter(w.Format)
	watcher, err := watch.New(watch.Options{
		ConfigPath: root.Config,
		SiteDir:    root.SiteDir,
		Debounce:   w.Debounce,
		Interval:   w.Interval,
		Logger:     g.Logger,
	}, func(ctx context.Context, _ string) error {
		rep, runErr := runner.Run(ctx, check.Options{ConfigPath: root.Config, SiteDir: root.SiteDir})
		if err := formatter.Format(g.Out, rep); err != nil {
			return err
		}
		return runErr
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// serveMetrics exposes the recorder's registry over HTTP until the returned
// stop function is called.
func serveMetrics(g *Global, addr string, recorder *metrics.PrometheusRecorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(recorder.Registry()))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		g.Logger.Info("Serving metrics", logfields.URL("http://"+addr+"/metrics"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.Logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
