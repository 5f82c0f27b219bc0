// Package site merges the configuration with the files it references (the
// sidebar descriptor, stylesheets, static assets and content) into a
// resolved, read-only view of the site.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/content"
	"github.com/devscast/siteconf/internal/editurl"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/routes"
	"github.com/devscast/siteconf/internal/sidebar"
	"github.com/devscast/siteconf/internal/urls"
)

// Site is the configuration resolved against the site directory.
type Site struct {
	Config   *config.Config
	Dir      string
	Sidebars sidebar.Sidebars
	Content  *content.Inventory
	Routes   *routes.Table
	Locales  []config.LocaleInfo
	Navbar   config.NavbarSegments

	// Files maps each referenced file (favicon, logos, stylesheets, sidebar)
	// to its resolved path on disk.
	Files     map[string]string
	Copyright string
}

// Options tunes Resolve.
type Options struct {
	// Now is the reference time for the copyright year. Zero means time.Now.
	Now time.Time
}

// Resolve loads every resource the configuration references and checks that
// it exists. Missing files are filesystem errors; dangling sidebar or doc
// references are validation errors. All problems of a kind are reported together.
func Resolve(ctx context.Context, cfg *config.Config, siteDir string, opts Options) (*Site, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	s := &Site{
		Config:  cfg,
		Dir:     siteDir,
		Locales: cfg.Locales(),
		Navbar:  cfg.NavbarSegments(),
		Files:   make(map[string]string),
	}

	r := &resolver{site: s}
	r.resolveFiles()
	if len(r.missing) > 0 {
		return nil, ferrors.WrapError(errors.Join(r.missing...), ferrors.CategoryFileSystem, "referenced files are missing").
			Fatal().
			WithContext("missing", len(r.missing)).
			Build()
	}

	if p := sidebarPath(cfg); p != "" {
		sb, err := sidebar.Load(s.Files["sidebar_path"])
		if err != nil {
			return nil, err
		}
		s.Sidebars = sb
	}

	inv, err := content.Discover(ctx, siteDir, cfg)
	if err != nil {
		return nil, err
	}
	s.Content = inv
	for _, locale := range inv.Locales {
		for _, d := range inv.Locale(locale).All() {
			d.EditURL = editurl.For(cfg, d)
		}
	}

	table, err := routes.Build(cfg, inv)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to build route table").Fatal().Build()
	}
	s.Routes = table

	r.checkReferences()
	if len(r.invalid) > 0 {
		return nil, ferrors.WrapError(errors.Join(r.invalid...), ferrors.CategoryValidation, "configuration references unknown sidebars or docs").
			Fatal().
			WithContext("problems", len(r.invalid)).
			Build()
	}

	s.Copyright, err = config.RenderCopyright(cfg, opts.Now)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to render copyright").Fatal().Build()
	}

	slog.Debug("Site resolved",
		logfields.Count(table.Len()),
		slog.Int("locales", len(s.Locales)),
		slog.Int("sidebars", len(s.Sidebars)))
	return s, nil
}

func sidebarPath(cfg *config.Config) string {
	if d := cfg.Docs(); d != nil {
		return d.SidebarPath
	}
	return ""
}

type resolver struct {
	site    *Site
	missing []error
	invalid []error
}

func (r *resolver) resolveFiles() {
	cfg := r.site.Config
	if cfg.Favicon != "" {
		r.static("favicon", cfg.Favicon)
	}
	if logo := cfg.ThemeConfig.Navbar.Logo; logo != nil {
		r.staticLogo("theme_config.navbar.logo", logo)
	}
	if logo := cfg.ThemeConfig.Footer.Logo; logo != nil {
		r.staticLogo("theme_config.footer.logo", logo)
	}
	for i, css := range cfg.CustomCSS() {
		r.local(fmt.Sprintf("custom_css[%d]", i), css)
	}
	if p := sidebarPath(cfg); p != "" {
		r.local("sidebar_path", p)
	}
}

func (r *resolver) staticLogo(field string, logo *config.LogoConfig) {
	r.static(field+".src", logo.Src)
	if logo.SrcDark != "" {
		r.static(field+".src_dark", logo.SrcDark)
	}
}

// static resolves ref against the static directories, first match wins.
// External URLs are not checked.
func (r *resolver) static(field, ref string) {
	if urls.IsExternal(ref) {
		return
	}
	if p, ok := FindStatic(r.site.Dir, r.site.Config.StaticDirectories, ref); ok {
		r.site.Files[field] = p
		return
	}
	r.missing = append(r.missing, fmt.Errorf("%s: %q not found in static directories %v", field, ref, r.site.Config.StaticDirectories))
}

// local resolves ref against the site directory.
func (r *resolver) local(field, ref string) {
	p := ref
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.site.Dir, filepath.FromSlash(ref))
	}
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		r.missing = append(r.missing, fmt.Errorf("%s: file %q does not exist", field, ref))
		return
	}
	r.site.Files[field] = p
}

// FindStatic looks ref up in the static directories of siteDir.
func FindStatic(siteDir string, staticDirs []string, ref string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimPrefix(urls.NormalizePath(ref), "/"))
	if rel == "" || rel == "." {
		return "", false
	}
	for _, dir := range staticDirs {
		p := filepath.Join(siteDir, filepath.FromSlash(dir), rel)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func (r *resolver) checkReferences() {
	s := r.site
	def := s.Content.Locale(s.Content.DefaultLocale)
	var known []string
	if def != nil {
		known = def.DocIDs()
	}

	if s.Sidebars != nil {
		if err := s.Sidebars.Validate(known); err != nil {
			r.invalid = append(r.invalid, err)
		}
	}

	s.Config.WalkNavbar(func(field string, item config.NavbarItem) {
		switch item.Type {
		case config.NavbarDocSidebar:
			if s.Config.Docs() == nil {
				r.invalid = append(r.invalid, fmt.Errorf("%s: docSidebar item requires the docs plugin", field))
				return
			}
			if !s.Sidebars.Has(item.SidebarID) {
				r.invalid = append(r.invalid, fmt.Errorf("%s: sidebar %q is not defined in %s", field, item.SidebarID, sidebarPath(s.Config)))
			}
		case config.NavbarDoc:
			if def == nil {
				return
			}
			if _, ok := def.Doc(item.DocID); !ok {
				r.invalid = append(r.invalid, fmt.Errorf("%s: doc %q does not exist", field, item.DocID))
			}
		}
	})
}

// NavbarTarget returns the route a navbar item links to in locale, or ""
// for items without an internal target (external links, search, html).
func (s *Site) NavbarTarget(locale string, item config.NavbarItem) string {
	switch item.Type {
	case config.NavbarDefault:
		return item.To
	case config.NavbarDocSidebar:
		lc := s.Content.Locale(locale)
		if lc == nil {
			return ""
		}
		id, ok := s.Sidebars.FirstDoc(item.SidebarID, lc.DocIDs())
		if !ok {
			return ""
		}
		return s.docRoute(locale, id)
	case config.NavbarDoc:
		return s.docRoute(locale, item.DocID)
	}
	return ""
}

func (s *Site) docRoute(locale, id string) string {
	for _, r := range s.Routes.ForLocale(locale) {
		if r.Kind == routes.KindDoc && r.DocID == id {
			return r.Path
		}
	}
	return ""
}
