// Package content discovers the docs, blog posts and pages of a site for
// every configured locale.
package content

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/devscast/siteconf/internal/markdown"
)

// Kind classifies a content file.
type Kind string

const (
	KindDoc  Kind = "doc"
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Document is one discovered content file in one locale.
type Document struct {
	Kind   Kind
	Locale string

	// SitePath is the slash-separated path of the source file relative to
	// the site directory, e.g. "docs/tutorial/setup.md".
	SitePath string
	// ContentDir is the slash-separated content directory SitePath lives in,
	// e.g. "docs" or "i18n/fr/docs".
	ContentDir string
	// RelPath is SitePath relative to ContentDir.
	RelPath string
	// Localized reports whether the file comes from the locale's i18n tree
	// rather than falling back to the default-locale file.
	Localized bool

	ID          string
	Title       string
	Slug        string
	Tags        []string
	Date        time.Time
	ReadingTime int
	Markdown    bool

	Links   []markdown.Link
	EditURL string
}

// IsMarkdown reports whether path names a Markdown content file.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".mdx"
}

// IsPage reports whether path names a file that produces a standalone page.
func IsPage(path string) bool {
	if IsMarkdown(path) {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".ts", ".tsx":
		return !strings.Contains(path, ".test.") && !strings.Contains(path, ".spec.")
	}
	return false
}

// LocaleContent holds the content of one locale.
type LocaleContent struct {
	Locale string
	Docs   []*Document
	Posts  []*Document
	Pages  []*Document

	docsByID   map[string]*Document
	bySitePath map[string]*Document
	// replaced maps default-locale source paths to the translations replacing them.
	replaced map[string]string
}

// Doc returns the doc with the given id.
func (lc *LocaleContent) Doc(id string) (*Document, bool) {
	d, ok := lc.docsByID[id]
	return d, ok
}

// BySitePath returns the document whose source file is sitePath. For a
// non-default locale both the localized file and the default-locale file it
// replaces resolve to the localized document.
func (lc *LocaleContent) BySitePath(sitePath string) (*Document, bool) {
	d, ok := lc.bySitePath[sitePath]
	return d, ok
}

// DocIDs returns the doc ids in discovery order.
func (lc *LocaleContent) DocIDs() []string {
	ids := make([]string, 0, len(lc.Docs))
	for _, d := range lc.Docs {
		ids = append(ids, d.ID)
	}
	return ids
}

// All returns docs, posts and pages in that order.
func (lc *LocaleContent) All() []*Document {
	out := make([]*Document, 0, len(lc.Docs)+len(lc.Posts)+len(lc.Pages))
	out = append(out, lc.Docs...)
	out = append(out, lc.Posts...)
	return append(out, lc.Pages...)
}

// Inventory is the content of every locale, keyed by locale.
type Inventory struct {
	DefaultLocale string
	Locales       []string
	ByLocale      map[string]*LocaleContent
}

// Locale returns the content of locale, or nil.
func (inv *Inventory) Locale(locale string) *LocaleContent {
	return inv.ByLocale[locale]
}
