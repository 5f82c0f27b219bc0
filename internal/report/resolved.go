package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/routes"
	"github.com/devscast/siteconf/internal/site"
)

// Resolved is the merged view printed by the resolve command: the
// configuration with every default applied plus the values derived from it.
type Resolved struct {
	Config    *config.Config        `yaml:"config"`
	Locales   []config.LocaleInfo   `yaml:"locales"`
	Navbar    config.NavbarSegments `yaml:"navbar"`
	Copyright string                `yaml:"copyright"`
	Files     map[string]string     `yaml:"files,omitempty"`
	Routes    int                   `yaml:"routes"`
}

// NewResolved builds the resolve view of s.
func NewResolved(s *site.Site) *Resolved {
	return &Resolved{
		Config:    s.Config,
		Locales:   s.Locales,
		Navbar:    s.Navbar,
		Copyright: s.Copyright,
		Files:     s.Files,
		Routes:    s.Routes.Len(),
	}
}

// WriteResolved writes r as YAML or JSON.
//
// JSON is produced from the YAML encoding so both formats share the
// configuration's snake_case field names.
func WriteResolved(w io.Writer, r *Resolved, format string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal resolved configuration: %w", err)
	}
	switch format {
	case "", "yaml":
		_, err = w.Write(data)
		return err
	case "json":
		var generic any
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&generic); err != nil {
			return fmt.Errorf("decode resolved configuration: %w", err)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(generic)
	default:
		return fmt.Errorf("unsupported format %q (yaml|json)", format)
	}
}

// WriteRoutes writes the routes as an aligned table, or as JSON.
func WriteRoutes(w io.Writer, rs []routes.Route, format string) error {
	if format == "json" {
		if rs == nil {
			rs = []routes.Route{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rs)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "LOCALE\tKIND\tPATH\tSOURCE"); err != nil {
		return err
	}
	for _, r := range rs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Locale, r.Kind, r.Path, r.Source); err != nil {
			return err
		}
	}
	return tw.Flush()
}
