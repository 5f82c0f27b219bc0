// Package editurl builds the "edit this page" links of docs and blog posts.
package editurl

import (
	"path"
	"strings"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/content"
)

// ForDoc returns the edit URL of a doc, or "" when docs have no edit_url.
func ForDoc(cfg *config.Config, d *content.Document) string {
	opts := cfg.Docs()
	if opts == nil {
		return ""
	}
	return build(opts.EditURL, opts.Path, opts.EditLocalizedFiles, d)
}

// ForPost returns the edit URL of a blog post, or "" when the blog has no edit_url.
func ForPost(cfg *config.Config, d *content.Document) string {
	opts := cfg.Blog()
	if opts == nil {
		return ""
	}
	return build(opts.EditURL, opts.Path, opts.EditLocalizedFiles, d)
}

// For dispatches on the document kind. Pages have no edit URL.
func For(cfg *config.Config, d *content.Document) string {
	switch d.Kind {
	case content.KindDoc:
		return ForDoc(cfg, d)
	case content.KindPost:
		return ForPost(cfg, d)
	default:
		return ""
	}
}

// build appends the site-relative source path to editURL. Translations link
// to the default-locale source unless localized files are editable.
func build(editURL, contentPath string, localized bool, d *content.Document) string {
	if editURL == "" || d == nil {
		return ""
	}
	file := d.SitePath
	if d.Localized && !localized {
		file = path.Join(contentPath, d.RelPath)
	}
	return strings.TrimSuffix(editURL, "/") + "/" + strings.TrimPrefix(file, "/")
}
