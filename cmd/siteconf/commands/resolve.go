package commands

import (
	"context"
	"log/slog"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/report"
	"github.com/devscast/siteconf/internal/site"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Format string `short:"f" default:"yaml" help:"Output format (yaml or json)" enum:"yaml,json"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	s, err := resolveSite(context.Background(), root)
	if err != nil {
		return err
	}
	return report.WriteResolved(g.Out, report.NewResolved(s), r.Format)
}

func resolveSite(ctx context.Context, root *CLI) (*site.Site, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	dir := root.ResolveSiteDir()
	if err := config.InferRepositoryIdentity(cfg, dir); err != nil {
		slog.Warn("Could not infer repository identity", logfields.Error(err))
	}
	return site.Resolve(ctx, cfg, dir, site.Options{})
}
