package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devscast/siteconf/internal/config"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
title: Devscast Engineering
url: https://engineering.devscast.tech
i18n:
  default_locale: en
  locales: [en, fr]
`))
	require.NoError(t, err)
	return cfg
}

func TestDiscover_Docs(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"docs/intro.md":             "# Introduction\n\nSee [setup](./tutorial/01-setup.md).\n",
		"docs/tutorial/01-setup.md": "---\ntitle: Setup guide\n---\n# Ignored heading\n",
		"docs/tutorial/index.md":    "# Tutorial\n",
		"docs/tutorial/custom.mdx":  "---\nid: renamed\nslug: /custom-route\n---\nBody\n",
		"docs/tutorial/draft.md":    "---\ndraft: true\n---\n# Draft\n",
		"docs/_partials/snippet.md": "# Partial\n",
		"docs/tutorial/_hidden.md":  "# Hidden\n",
		"docs/tutorial/notes.txt":   "not content",
		"docs/guides/guides.md":     "# Guides home\n",
	})

	inv, err := Discover(context.Background(), site, testConfig(t))
	require.NoError(t, err)

	en := inv.Locale("en")
	require.NotNil(t, en)
	require.ElementsMatch(t, []string{"intro", "tutorial/setup", "tutorial/index", "tutorial/renamed", "guides/guides"}, en.DocIDs())

	intro, ok := en.Doc("intro")
	require.True(t, ok)
	require.Equal(t, "Introduction", intro.Title)
	require.Equal(t, "/intro", intro.Slug)
	require.Equal(t, "docs/intro.md", intro.SitePath)
	require.Len(t, intro.Links, 1)
	require.Equal(t, "./tutorial/01-setup.md", intro.Links[0].Destination)
	require.Equal(t, 3, intro.Links[0].Line)

	setup, _ := en.Doc("tutorial/setup")
	require.Equal(t, "Setup guide", setup.Title)
	require.Equal(t, "/tutorial/setup", setup.Slug)

	index, _ := en.Doc("tutorial/index")
	require.Equal(t, "/tutorial", index.Slug)

	custom, _ := en.Doc("tutorial/renamed")
	require.Equal(t, "/custom-route", custom.Slug)

	guides, _ := en.Doc("guides/guides")
	require.Equal(t, "/guides", guides.Slug)
}

func TestDiscover_LinkLinesAccountForFrontmatter(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"docs/a.md": "---\ntitle: A\n---\n\n[b](./b.md)\n",
		"docs/b.md": "# B\n",
	})
	inv, err := Discover(context.Background(), site, testConfig(t))
	require.NoError(t, err)
	a, _ := inv.Locale("en").Doc("a")
	require.Equal(t, 5, a.Links[0].Line)
}

func TestDiscover_Blog(t *testing.T) {
	site := t.TempDir()
	long := strings.Repeat("word ", 450)
	writeFiles(t, site, map[string]string{
		"blog/2021-08-26-welcome.md":      "---\ntags: [hello]\n---\n# Welcome\n\n" + long + "\n",
		"blog/2022-01-10-folder/index.md": "# Folder post\n",
		"blog/announcement.md":            "---\ndate: 2023-05-01\nslug: big-news\n---\n# Big news\n",
		"blog/undated.md":                 "# Undated\n",
		"blog/2020-01-01-draft.md":        "---\ndraft: true\n---\n",
	})

	inv, err := Discover(context.Background(), site, testConfig(t))
	require.NoError(t, err)
	posts := inv.Locale("en").Posts
	require.Len(t, posts, 4)

	byID := map[string]*Document{}
	for _, p := range posts {
		byID[p.ID] = p
	}

	welcome := byID["welcome"]
	require.NotNil(t, welcome)
	require.Equal(t, time.Date(2021, 8, 26, 0, 0, 0, 0, time.UTC), welcome.Date)
	require.Equal(t, "/2021/08/26/welcome", welcome.Slug)
	require.Equal(t, "Welcome", welcome.Title)
	require.Equal(t, 3, welcome.ReadingTime)
	require.Equal(t, []string{"hello"}, welcome.Tags)

	folder := byID["folder"]
	require.NotNil(t, folder)
	require.Equal(t, "/2022/01/10/folder", folder.Slug)
	require.Equal(t, 1, folder.ReadingTime)

	news := byID["announcement"]
	require.NotNil(t, news)
	require.Equal(t, "/big-news", news.Slug)

	undated := byID["undated"]
	require.NotNil(t, undated)
	require.Equal(t, "/undated", undated.Slug)

	// Newest first among dated posts.
	require.True(t, posts[0].Date.After(posts[1].Date) || posts[0].Date.Equal(posts[1].Date))
}

func TestDiscover_Pages(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"src/pages/index.js":         "export default function Home() {}",
		"src/pages/about.md":         "# About us\n",
		"src/pages/team/index.mdx":   "# Team\n",
		"src/pages/_components/x.js": "",
		"src/pages/index.module.css": "",
		"src/pages/home.test.js":     "",
	})

	inv, err := Discover(context.Background(), site, testConfig(t))
	require.NoError(t, err)
	slugs := map[string]string{}
	for _, p := range inv.Locale("en").Pages {
		slugs[p.SitePath] = p.Slug
	}
	require.Equal(t, map[string]string{
		"src/pages/index.js":       "/",
		"src/pages/about.md":       "/about",
		"src/pages/team/index.mdx": "/team",
	}, slugs)
}

func TestDiscover_LocaleOverlay(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"docs/intro.md":         "# Introduction\n",
		"docs/setup.md":         "# Setup\n",
		"i18n/fr/docs/intro.md": "# Présentation\n",
		"i18n/fr/docs/only.md":  "# Seulement en français\n",
	})

	inv, err := Discover(context.Background(), site, testConfig(t))
	require.NoError(t, err)

	en := inv.Locale("en")
	require.Equal(t, []string{"intro", "setup"}, en.DocIDs())

	fr := inv.Locale("fr")
	require.Equal(t, []string{"intro", "setup", "only"}, fr.DocIDs())

	intro, _ := fr.Doc("intro")
	require.True(t, intro.Localized)
	require.Equal(t, "Présentation", intro.Title)
	require.Equal(t, "i18n/fr/docs/intro.md", intro.SitePath)
	require.Equal(t, "fr", intro.Locale)

	setup, _ := fr.Doc("setup")
	require.False(t, setup.Localized)
	require.Equal(t, "fr", setup.Locale)
	require.Equal(t, "docs/setup.md", setup.SitePath)

	// The default-locale source resolves to its translation in fr.
	d, ok := fr.BySitePath("docs/intro.md")
	require.True(t, ok)
	require.Equal(t, "i18n/fr/docs/intro.md", d.SitePath)

	// The en document is untouched by the overlay.
	enIntro, _ := en.Doc("intro")
	require.Equal(t, "en", enIntro.Locale)
}

func TestDiscover_DuplicateDocIDs(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"docs/a.md": "---\nid: same\n---\n",
		"docs/b.md": "---\nid: same\n---\n",
	})

	_, err := Discover(context.Background(), site, testConfig(t))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
	require.Contains(t, err.Error(), `doc id "same"`)
}

func TestDiscover_InvalidFrontmatter(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{
		"docs/a.md": "---\ntitle: [unclosed\n---\n",
	})

	_, err := Discover(context.Background(), site, testConfig(t))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
}

func TestDiscover_MissingDirectoriesYieldNothing(t *testing.T) {
	inv, err := Discover(context.Background(), t.TempDir(), testConfig(t))
	require.NoError(t, err)
	require.Empty(t, inv.Locale("en").All())
	require.Empty(t, inv.Locale("fr").All())
}

func TestDiscover_Canceled(t *testing.T) {
	site := t.TempDir()
	writeFiles(t, site, map[string]string{"docs/a.md": "# A\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, site, testConfig(t))
	require.ErrorIs(t, err, context.Canceled)
}
