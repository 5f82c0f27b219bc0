package commands

import (
	"context"
	"slices"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/report"
	"github.com/devscast/siteconf/internal/routes"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	Locale string `short:"l" help:"Only list the routes of this locale"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	s, err := resolveSite(context.Background(), root)
	if err != nil {
		return err
	}

	locales := s.Content.Locales
	if r.Locale != "" {
		if !slices.Contains(locales, r.Locale) {
			return ferrors.ValidationError("unknown locale").
				WithContext("locale", r.Locale).
				WithContext("locales", locales).
				Build()
		}
		locales = []string{r.Locale}
	}

	var out []routes.Route
	for _, locale := range locales {
		out = append(out, s.Routes.ForLocale(locale)...)
	}
	return report.WriteRoutes(g.Out, out, r.Format)
}
