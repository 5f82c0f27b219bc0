// Package routes computes the route table of a site: every URL path the
// built site serves, per locale. The table exists to resolve links; nothing
// is rendered.
package routes

import (
	"errors"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/content"
	"github.com/devscast/siteconf/internal/urls"
)

// Kind classifies a route.
type Kind string

const (
	KindDoc         Kind = "doc"
	KindBlogList    Kind = "blog_list"
	KindBlogPage    Kind = "blog_page"
	KindBlogPost    Kind = "blog_post"
	KindBlogArchive Kind = "blog_archive"
	KindBlogTags    Kind = "blog_tags"
	KindBlogTag     Kind = "blog_tag"
	KindPage        Kind = "page"
)

// Route is one path served by the site.
type Route struct {
	Path   string `json:"path" yaml:"path"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Locale string `json:"locale" yaml:"locale"`
	// Source is the site-relative file producing the route; empty for generated routes.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	DocID  string `json:"doc_id,omitempty" yaml:"doc_id,omitempty"`
}

// Duplicate records a path produced more than once within a locale.
type Duplicate struct {
	Path    string   `json:"path" yaml:"path"`
	Locale  string   `json:"locale" yaml:"locale"`
	Sources []string `json:"sources" yaml:"sources"`
}

// Table is the route table of every locale.
type Table struct {
	joiner     urls.Joiner
	locales    []string
	defLocale  string
	routes     []Route
	byKey      map[string]int
	duplicates []Duplicate
}

// Build computes the routes of every locale in inv.
//
// Docs are served at base + docs route base + slug, posts at base + blog
// route base + slug, and pages at base + slug, where base is the localized
// base URL. The blog also serves its list, pagination, archive and tag pages.
func Build(cfg *config.Config, inv *content.Inventory) (*Table, error) {
	if cfg == nil || inv == nil {
		return nil, errors.New("routes: config and content are required")
	}
	t := &Table{
		joiner:    urls.Joiner{SiteURL: cfg.URL, BaseURL: cfg.BaseURL, TrailingSlash: cfg.TrailingSlash},
		locales:   append([]string(nil), cfg.I18n.Locales...),
		defLocale: cfg.I18n.DefaultLocale,
		byKey:     make(map[string]int),
	}
	for _, locale := range cfg.I18n.Locales {
		lc := inv.Locale(locale)
		if lc == nil {
			continue
		}
		b := &localeBuilder{table: t, locale: locale, base: urls.LocalizedBaseURL(cfg.BaseURL, locale, t.defLocale)}
		if docs := cfg.Docs(); docs != nil {
			for _, d := range lc.Docs {
				b.add(Route{Kind: KindDoc, Path: b.path(docs.RouteBasePath, d.Slug), Source: d.SitePath, DocID: d.ID})
			}
		}
		if blog := cfg.Blog(); blog != nil {
			b.addBlog(blog, lc.Posts)
		}
		if cfg.Pages() != nil {
			for _, p := range lc.Pages {
				b.add(Route{Kind: KindPage, Path: b.path("", p.Slug), Source: p.SitePath})
			}
		}
	}
	return t, nil
}

type localeBuilder struct {
	table  *Table
	locale string
	base   string
}

func (b *localeBuilder) path(routeBase, slug string) string {
	return urls.ApplyTrailingSlash(urls.JoinPath(b.base, path.Join("/", routeBase, slug)), b.table.joiner.TrailingSlash)
}

func (b *localeBuilder) add(r Route) {
	r.Locale = b.locale
	t := b.table
	k := key(r.Locale, r.Path)
	if idx, ok := t.byKey[k]; ok {
		t.recordDuplicate(t.routes[idx], r)
		return
	}
	t.byKey[k] = len(t.routes)
	t.routes = append(t.routes, r)
}

func (b *localeBuilder) addBlog(opts *config.BlogOptions, posts []*content.Document) {
	rb := opts.RouteBasePath
	b.add(Route{Kind: KindBlogList, Path: b.path(rb, "")})
	if len(posts) == 0 {
		return
	}
	if per := opts.PostsPerPage; per > 0 {
		pages := (len(posts) + per - 1) / per
		for n := 2; n <= pages; n++ {
			b.add(Route{Kind: KindBlogPage, Path: b.path(rb, "page/"+strconv.Itoa(n))})
		}
	}
	b.add(Route{Kind: KindBlogArchive, Path: b.path(rb, "archive")})

	tags := map[string]bool{}
	for _, p := range posts {
		b.add(Route{Kind: KindBlogPost, Path: b.path(rb, p.Slug), Source: p.SitePath})
		for _, tag := range p.Tags {
			if s := TagSlug(tag); s != "" {
				tags[s] = true
			}
		}
	}
	if len(tags) == 0 {
		return
	}
	b.add(Route{Kind: KindBlogTags, Path: b.path(rb, "tags")})
	names := make([]string, 0, len(tags))
	for s := range tags {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		b.add(Route{Kind: KindBlogTag, Path: b.path(rb, "tags/"+s)})
	}
}

func (t *Table) recordDuplicate(existing, dup Route) {
	for i := range t.duplicates {
		d := &t.duplicates[i]
		if d.Path == dup.Path && d.Locale == dup.Locale {
			d.Sources = append(d.Sources, sourceName(dup))
			return
		}
	}
	t.duplicates = append(t.duplicates, Duplicate{
		Path:    dup.Path,
		Locale:  dup.Locale,
		Sources: []string{sourceName(existing), sourceName(dup)},
	})
}

func sourceName(r Route) string {
	if r.Source != "" {
		return r.Source
	}
	return "(" + string(r.Kind) + ")"
}

// TagSlug converts a tag label into its URL segment.
func TagSlug(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "-")
}

// Routes returns every route, grouped by locale in configured order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// ForLocale returns the routes of one locale, sorted by path.
func (t *Table) ForLocale(locale string) []Route {
	var out []Route
	for _, r := range t.routes {
		if r.Locale == locale {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Duplicates returns the paths produced more than once within a locale.
func (t *Table) Duplicates() []Duplicate {
	out := make([]Duplicate, len(t.duplicates))
	copy(out, t.duplicates)
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.routes) }

// URL returns the fully qualified URL of a route path.
func (t *Table) URL(routePath string) string {
	return strings.TrimRight(t.joiner.SiteURL, "/") + routePath
}

// Lookup finds the route serving p in locale. Trailing slashes, query
// strings, fragments and "index"/".html" forms are tolerated.
func (t *Table) Lookup(locale, p string) (Route, bool) {
	for _, candidate := range lookupForms(p) {
		if idx, ok := t.byKey[key(locale, candidate)]; ok {
			return t.routes[idx], true
		}
	}
	return Route{}, false
}

// Resolve finds the target of a site link written in locale. A link is
// first read relative to the locale's base URL, as the site prefixes it at
// render time, then as an already prefixed path. Links into another locale
// resolve against that locale's routes.
func (t *Table) Resolve(locale, target string) (Route, bool) {
	base := urls.LocalizedBaseURL(t.joiner.BaseURL, locale, t.defLocale)
	if r, ok := t.Lookup(locale, urls.JoinPath(base, target)); ok {
		return r, true
	}
	for _, l := range t.locales {
		if r, ok := t.Lookup(l, target); ok {
			return r, true
		}
	}
	return Route{}, false
}

func key(locale, p string) string {
	return locale + "\x00" + urls.NormalizePath(p)
}

func lookupForms(p string) []string {
	clean := urls.NormalizePath(p)
	forms := []string{clean}
	switch {
	case strings.HasSuffix(clean, "/index.html"):
		forms = append(forms, strings.TrimSuffix(clean, "/index.html"))
	case strings.HasSuffix(clean, "/index"):
		forms = append(forms, strings.TrimSuffix(clean, "/index"))
	case strings.HasSuffix(clean, ".html"):
		forms = append(forms, strings.TrimSuffix(clean, ".html"))
	}
	for i, f := range forms {
		if f == "" {
			forms[i] = "/"
		}
	}
	return forms
}
