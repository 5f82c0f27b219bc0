package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/content"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/markdown"
	"github.com/devscast/siteconf/internal/site"
	"github.com/devscast/siteconf/internal/urls"
)

// Checker checks the links of a resolved site.
type Checker struct {
	logger *slog.Logger
}

// NewChecker returns a Checker logging through logger (slog.Default when nil).
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{logger: logger}
}

// Check verifies, for every locale, the internal targets of the navbar and
// footer, every link in Markdown content and the uniqueness of routes.
//
// Each issue is graded with the policy of its kind: throw and warn issues are
// logged at ERROR and WARN, log issues at INFO, ignore issues are dropped.
func (c *Checker) Check(ctx context.Context, s *site.Site) (*Result, error) {
	run := &checkRun{
		checker: c,
		site:    s,
		result:  &Result{},
		seen:    make(map[string]bool),
		pages:   make(map[string]string),
	}
	for _, rt := range s.Routes.Routes() {
		if rt.Source != "" {
			run.pages[rt.Locale+"\x00"+rt.Source] = rt.Path
		}
	}

	for _, locale := range s.Content.Locales {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run.checkThemeLinks(locale)
		lc := s.Content.Locale(locale)
		if lc == nil {
			continue
		}
		for _, d := range lc.All() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run.checkDocument(lc, d)
		}
	}
	run.checkDuplicates()
	return run.result, nil
}

type checkRun struct {
	checker *Checker
	site    *site.Site
	result  *Result
	seen    map[string]bool
	// pages maps locale and source file to the route serving it.
	pages map[string]string
}

func (r *checkRun) policy(kind IssueKind) config.ReportingSeverity {
	cfg := r.site.Config
	switch kind {
	case KindBrokenMarkdownLink:
		return cfg.OnBrokenMarkdownLinks
	case KindDuplicateRoute:
		return cfg.OnDuplicateRoutes
	default:
		return cfg.OnBrokenLinks
	}
}

// report grades and records an issue once.
func (r *checkRun) report(issue Issue) {
	issue.Severity = r.policy(issue.Kind)
	if !issue.Severity.Reported() {
		return
	}
	key := strings.Join([]string{string(issue.Kind), issue.Locale, issue.Source, fmt.Sprint(issue.Line), issue.Target, issue.Resolved}, "\x00")
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.result.Issues = append(r.result.Issues, issue)

	attrs := []any{
		logfields.IssueKind(string(issue.Kind)),
		logfields.Source(issue.Source),
		logfields.Link(issue.Target),
		logfields.Locale(issue.Locale),
	}
	if issue.Line > 0 {
		attrs = append(attrs, logfields.Line(issue.Line))
	}
	switch issue.Severity {
	case config.SeverityThrow:
		r.checker.logger.Error(issue.Message, attrs...)
	case config.SeverityWarn:
		r.checker.logger.Warn(issue.Message, attrs...)
	default:
		r.checker.logger.Info(issue.Message, attrs...)
	}
}

// checkThemeLinks checks the internal targets of navbar and footer entries.
func (r *checkRun) checkThemeLinks(locale string) {
	cfg := r.site.Config
	cfg.WalkNavbar(func(field string, item config.NavbarItem) {
		if item.Type == config.NavbarDefault && item.To != "" {
			r.checkRoute(locale, field, 0, item.To)
		}
	})
	if logo := cfg.ThemeConfig.Navbar.Logo; logo != nil && logo.Href != "" && !urls.IsExternal(logo.Href) {
		r.checkRoute(locale, "theme_config.navbar.logo.href", 0, logo.Href)
	}
	for ci, col := range cfg.ThemeConfig.Footer.Links {
		for ii, item := range col.Items {
			if item.To != "" {
				r.checkRoute(locale, fmt.Sprintf("theme_config.footer.links[%d].items[%d]", ci, ii), 0, item.To)
			}
		}
	}
}

// checkRoute verifies that an absolute site path is served in locale.
func (r *checkRun) checkRoute(locale, source string, line int, target string) {
	r.result.LinksChecked++
	if _, ok := r.site.Routes.Resolve(locale, target); ok {
		return
	}
	if _, ok := site.FindStatic(r.site.Dir, r.site.Config.StaticDirectories, target); ok {
		return
	}
	r.report(Issue{
		Kind:     KindBrokenLink,
		Locale:   locale,
		Source:   source,
		Line:     line,
		Target:   target,
		Resolved: urls.NormalizePath(urls.JoinPath(r.localeBase(locale), target)),
		Message:  fmt.Sprintf("Broken link to %s", target),
	})
}

func (r *checkRun) localeBase(locale string) string {
	cfg := r.site.Config
	return urls.LocalizedBaseURL(cfg.BaseURL, locale, cfg.I18n.DefaultLocale)
}

func (r *checkRun) checkDocument(lc *content.LocaleContent, d *content.Document) {
	if !d.Markdown {
		return
	}
	inline := make(map[string]bool, len(d.Links))
	for _, l := range d.Links {
		if l.Kind != markdown.LinkKindReferenceDefinition {
			inline[l.Destination] = true
		}
	}
	for _, l := range d.Links {
		// A definition used by a link is checked through that link.
		if l.Kind == markdown.LinkKindReferenceDefinition && inline[l.Destination] {
			continue
		}
		r.checkLink(lc, d, l)
	}
}

func (r *checkRun) checkLink(lc *content.LocaleContent, d *content.Document, l markdown.Link) {
	target := strings.TrimSpace(l.Destination)
	if target == "" || strings.HasPrefix(target, "#") || urls.IsExternal(target) {
		return
	}
	p := target
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	if content.IsMarkdown(p) {
		r.checkMarkdownLink(lc, d, l, p)
		return
	}

	if strings.HasPrefix(p, "/") {
		r.checkRoute(lc.Locale, d.SitePath, l.Line, target)
		return
	}

	// Relative link: a file next to the source (an image, a download) or a
	// route relative to the page.
	r.result.LinksChecked++
	if fileExists(filepath.Join(r.site.Dir, filepath.FromSlash(path.Join(path.Dir(d.SitePath), p)))) {
		return
	}
	page := r.pages[lc.Locale+"\x00"+d.SitePath]
	resolved := urls.NormalizePath(path.Join(path.Dir(page), p))
	if page != "" {
		if _, ok := r.site.Routes.Lookup(lc.Locale, resolved); ok {
			return
		}
	}
	r.report(Issue{
		Kind:     KindBrokenLink,
		Locale:   lc.Locale,
		Source:   d.SitePath,
		Line:     l.Line,
		Target:   target,
		Resolved: resolved,
		Message:  fmt.Sprintf("Broken link to %s", target),
	})
}

// checkMarkdownLink resolves a .md/.mdx reference to a content file. Paths
// are relative to the source file; a leading slash makes them relative to
// the source's content directory. Translations may also reference files of
// the default-locale tree.
func (r *checkRun) checkMarkdownLink(lc *content.LocaleContent, d *content.Document, l markdown.Link, p string) {
	r.result.LinksChecked++

	var rel string
	if strings.HasPrefix(p, "/") {
		rel = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		rel = path.Clean(path.Join(path.Dir(d.RelPath), p))
	}

	candidates := []string{path.Join(d.ContentDir, rel)}
	if base := r.baseContentDir(d.Kind); base != "" && base != d.ContentDir {
		candidates = append(candidates, path.Join(base, rel))
	}
	for _, c := range candidates {
		if _, ok := lc.BySitePath(c); ok {
			return
		}
	}

	r.report(Issue{
		Kind:     KindBrokenMarkdownLink,
		Locale:   lc.Locale,
		Source:   d.SitePath,
		Line:     l.Line,
		Target:   l.Destination,
		Resolved: candidates[0],
		Message:  fmt.Sprintf("Broken Markdown link to %s", l.Destination),
	})
}

func (r *checkRun) baseContentDir(kind content.Kind) string {
	cfg := r.site.Config
	switch kind {
	case content.KindDoc:
		if d := cfg.Docs(); d != nil {
			return d.Path
		}
	case content.KindPost:
		if b := cfg.Blog(); b != nil {
			return b.Path
		}
	case content.KindPage:
		if p := cfg.Pages(); p != nil {
			return p.Path
		}
	}
	return ""
}

func (r *checkRun) checkDuplicates() {
	for _, dup := range r.site.Routes.Duplicates() {
		r.report(Issue{
			Kind:     KindDuplicateRoute,
			Locale:   dup.Locale,
			Source:   strings.Join(dup.Sources, ", "),
			Target:   dup.Path,
			Resolved: dup.Path,
			Message:  fmt.Sprintf("Duplicate route %s", dup.Path),
		})
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
