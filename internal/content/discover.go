package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/frontmatter"
	"github.com/devscast/siteconf/internal/logfields"
	"github.com/devscast/siteconf/internal/markdown"
)

// WordsPerMinute is the reading speed used for blog reading times.
const WordsPerMinute = 200

// Localized content of locale l lives under i18n/<l>/docs, i18n/<l>/blog and i18n/<l>/pages.
const (
	I18nDir      = "i18n" // translations root, relative to the site directory
	i18nDocsDir  = "docs"
	i18nBlogDir  = "blog"
	i18nPagesDir = "pages"
)

// Discover scans the content directories of siteDir for the default locale
// and overlays the translated files of every other locale. A locale without
// a translation of a file falls back to the default-locale file.
func Discover(ctx context.Context, siteDir string, cfg *config.Config) (*Inventory, error) {
	def := cfg.I18n.DefaultLocale
	inv := &Inventory{
		DefaultLocale: def,
		Locales:       append([]string(nil), cfg.I18n.Locales...),
		ByLocale:      make(map[string]*LocaleContent, len(cfg.I18n.Locales)),
	}

	s := &scanner{siteDir: siteDir}
	baseDirs := contentDirs{
		docs:  docsPath(cfg),
		blog:  blogPath(cfg),
		pages: pagesPath(cfg),
	}
	base, err := s.scanLocale(ctx, def, baseDirs)
	if err != nil {
		return nil, err
	}

	var problems []error
	for _, locale := range cfg.I18n.Locales {
		lc := base
		if locale != def {
			root := path.Join(I18nDir, locale)
			dirs := contentDirs{}
			if cfg.Docs() != nil {
				dirs.docs = path.Join(root, i18nDocsDir)
			}
			if cfg.Blog() != nil {
				dirs.blog = path.Join(root, i18nBlogDir)
			}
			if cfg.Pages() != nil {
				dirs.pages = path.Join(root, i18nPagesDir)
			}
			translated, err := s.scanLocale(ctx, locale, dirs)
			if err != nil {
				return nil, err
			}
			lc = overlay(base, translated, locale, baseDirs)
		}
		if err := lc.index(); err != nil {
			problems = append(problems, err)
		}
		inv.ByLocale[locale] = lc
	}
	if len(problems) > 0 {
		return nil, ferrors.WrapError(errors.Join(problems...), ferrors.CategoryContent, "duplicate doc ids").
			Fatal().
			WithContext("problems", len(problems)).
			Build()
	}
	return inv, nil
}

type contentDirs struct {
	docs, blog, pages string
}

func docsPath(cfg *config.Config) string {
	if d := cfg.Docs(); d != nil {
		return d.Path
	}
	return ""
}

func blogPath(cfg *config.Config) string {
	if b := cfg.Blog(); b != nil {
		return b.Path
	}
	return ""
}

func pagesPath(cfg *config.Config) string {
	if p := cfg.Pages(); p != nil {
		return p.Path
	}
	return ""
}

type scanner struct {
	siteDir string
}

func (s *scanner) scanLocale(ctx context.Context, locale string, dirs contentDirs) (*LocaleContent, error) {
	lc := &LocaleContent{Locale: locale}
	var err error
	if dirs.docs != "" {
		if lc.Docs, err = s.scanDir(ctx, dirs.docs, IsMarkdown, func(f *file) (*Document, error) { return parseDoc(f, locale) }); err != nil {
			return nil, err
		}
	}
	if dirs.blog != "" {
		if lc.Posts, err = s.scanDir(ctx, dirs.blog, IsMarkdown, func(f *file) (*Document, error) { return parsePost(f, locale) }); err != nil {
			return nil, err
		}
		sortPosts(lc.Posts)
	}
	if dirs.pages != "" {
		if lc.Pages, err = s.scanDir(ctx, dirs.pages, IsPage, func(f *file) (*Document, error) { return parsePage(f, locale) }); err != nil {
			return nil, err
		}
	}
	slog.Debug("Discovered content",
		logfields.Locale(locale),
		slog.Int("docs", len(lc.Docs)),
		slog.Int("posts", len(lc.Posts)),
		slog.Int("pages", len(lc.Pages)))
	return lc, nil
}

// file is a content file read from disk.
type file struct {
	contentDir string
	relPath    string
	data       []byte
	doc        frontmatter.Document
	modTime    int64
}

func (f *file) sitePath() string { return path.Join(f.contentDir, f.relPath) }

// scanDir walks contentDir and parses every file accepted by match. Files
// and directories whose name starts with "_" or "." are skipped. A missing
// directory yields no documents.
func (s *scanner) scanDir(ctx context.Context, contentDir string, match func(string) bool, parse func(*file) (*Document, error)) ([]*Document, error) {
	root := filepath.Join(s.siteDir, filepath.FromSlash(contentDir))
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		slog.Debug("Content directory not found", logfields.Path(root))
		return nil, nil
	}

	var docs []*Document
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !match(name) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		f, err := readFile(p, contentDir, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		doc, err := parse(f)
		if err != nil {
			return err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		if ferrors.IsClassified(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to scan content directory").
			Fatal().
			WithContext("dir", contentDir).
			Build()
	}
	return docs, nil
}

func readFile(p, contentDir, rel string) (*file, error) {
	// #nosec G304 -- p comes from walking the configured content directory
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	f := &file{contentDir: contentDir, relPath: rel, data: data, modTime: info.ModTime().Unix()}
	if !IsMarkdown(rel) {
		return f, nil
	}
	doc, err := frontmatter.Split(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "invalid front matter").
			Fatal().
			WithContext("path", f.sitePath()).
			Build()
	}
	f.doc = doc
	return f, nil
}

// decodeMeta decodes the front matter of f into out.
func decodeMeta(f *file, out any) error {
	if err := frontmatter.Decode(f.doc.Frontmatter, out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryContent, "invalid front matter").
			Fatal().
			WithContext("path", f.sitePath()).
			Build()
	}
	return nil
}

func newDocument(kind Kind, f *file, locale string) *Document {
	d := &Document{
		Kind:       kind,
		Locale:     locale,
		SitePath:   f.sitePath(),
		ContentDir: f.contentDir,
		RelPath:    f.relPath,
		Localized:  strings.HasPrefix(f.contentDir, I18nDir+"/"),
		Markdown:   IsMarkdown(f.relPath),
	}
	if d.Markdown {
		d.Links = markdown.ExtractLinks(f.doc.Body, markdown.Options{FirstLine: f.doc.BodyLine})
	}
	return d
}

// readingTime returns the minutes needed to read body, at least one.
func readingTime(body []byte) int {
	minutes := int(math.Ceil(float64(markdown.WordCount(body)) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// overlay builds the content of locale from the default-locale content and
// the translated files found for locale.
func overlay(base, translated *LocaleContent, locale string, baseDirs contentDirs) *LocaleContent {
	lc := &LocaleContent{Locale: locale}
	lc.Docs = overlayKind(base.Docs, translated.Docs, locale)
	lc.Posts = overlayKind(base.Posts, translated.Posts, locale)
	sortPosts(lc.Posts)
	lc.Pages = overlayKind(base.Pages, translated.Pages, locale)
	lc.replaced = make(map[string]string)
	for _, d := range lc.All() {
		if d.Localized {
			lc.replaced[path.Join(baseDirs.forKind(d.Kind), d.RelPath)] = d.SitePath
		}
	}
	return lc
}

func (c contentDirs) forKind(k Kind) string {
	switch k {
	case KindDoc:
		return c.docs
	case KindPost:
		return c.blog
	default:
		return c.pages
	}
}

func overlayKind(base, translated []*Document, locale string) []*Document {
	byRel := make(map[string]*Document, len(translated))
	for _, d := range translated {
		byRel[d.RelPath] = d
	}
	out := make([]*Document, 0, len(base)+len(translated))
	for _, d := range base {
		if t, ok := byRel[d.RelPath]; ok {
			out = append(out, t)
			delete(byRel, d.RelPath)
			continue
		}
		fallback := *d
		fallback.Locale = locale
		out = append(out, &fallback)
	}
	// Translations without a default-locale counterpart, in discovery order.
	for _, d := range translated {
		if _, ok := byRel[d.RelPath]; ok {
			out = append(out, d)
		}
	}
	return out
}

// index builds the lookup maps and rejects duplicate doc ids.
func (lc *LocaleContent) index() error {
	lc.docsByID = make(map[string]*Document, len(lc.Docs))
	lc.bySitePath = make(map[string]*Document)
	var problems []error
	for _, d := range lc.Docs {
		if prev, ok := lc.docsByID[d.ID]; ok {
			problems = append(problems, fmt.Errorf("locale %s: doc id %q declared by both %s and %s", lc.Locale, d.ID, prev.SitePath, d.SitePath))
			continue
		}
		lc.docsByID[d.ID] = d
	}
	for _, d := range lc.All() {
		lc.bySitePath[d.SitePath] = d
	}
	for from, to := range lc.replaced {
		lc.bySitePath[from] = lc.bySitePath[to]
	}
	return errors.Join(problems...)
}

func sortPosts(posts []*Document) {
	// Newest first, then by path for a stable order.
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].RelPath < posts[j].RelPath
	})
}
