package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/devscast/siteconf/internal/check"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/metrics"
	"github.com/devscast/siteconf/internal/notify"
	"github.com/devscast/siteconf/internal/report"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format      string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics of the run to this file (textfile collector format)" type:"path"`
	History     string `help:"Record the run in this SQLite database (e.g. ${history_path})"`
	NATSURL     string `name:"nats-url" help:"Publish broken-link events to this NATS server" env:"SITECONF_NATS_URL"`
	NATSSubject string `name:"nats-subject" help:"Subject for broken-link events" default:"${nats_subject}"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	runner, recorder, cleanup, err := buildRunner(g, root, runnerOptions{
		metrics:     c.MetricsFile != "",
		history:     c.History,
		natsURL:     c.NATSURL,
		natsSubject: c.NATSSubject,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	rep, runErr := runner.Run(ctx, check.Options{ConfigPath: root.Config, SiteDir: root.SiteDir})
	if err := report.NewFormatter(c.Format).Format(g.Out, rep); err != nil {
		return err
	}
	if c.MetricsFile != "" {
		if err := recorder.WriteTextfile(c.MetricsFile); err != nil {
			g.Logger.Warn("Failed to write metrics file", logfields.Path(c.MetricsFile), logfields.Error(err))
		}
	}
	return runErr
}

type runnerOptions struct {
	metrics     bool
	history     string
	natsURL     string
	natsSubject string
}

// buildRunner wires the optional recorder, history store and publisher. The
// returned cleanup closes whatever was opened.
func buildRunner(g *Global, root *CLI, o runnerOptions) (*check.Runner, *metrics.PrometheusRecorder, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				g.Logger.Debug("Cleanup failed", logfields.Error(err))
			}
		}
	}

	opts := []check.Option{check.WithLogger(g.Logger)}

	var recorder *metrics.PrometheusRecorder
	if o.metrics {
		recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		opts = append(opts, check.WithRecorder(recorder))
	}

	if o.history != "" {
		store, err := openHistory(root.resolvePath(o.history))
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, store.Close)
		opts = append(opts, check.WithHistory(store))
	}

	if o.natsURL != "" {
		pub, err := notify.NewNATSPublisher(o.natsURL, notify.WithSubject(o.natsSubject), notify.WithLogger(g.Logger))
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, pub.Close)
		opts = append(opts, check.WithPublisher(pub))
	}

	g.Logger.Debug("Runner configured",
		slog.Bool("metrics", recorder != nil),
		slog.Bool("history", o.history != ""),
		slog.Bool("events", o.natsURL != ""))
	return check.NewRunner(opts...), recorder, cleanup, nil
}
