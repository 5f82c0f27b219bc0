package linkcheck

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/site"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

type fixture struct {
	dir   string
	cfg   *config.Config
	files map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data, err := yaml.Marshal(config.ExampleConfig())
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	return &fixture{
		dir: t.TempDir(),
		cfg: cfg,
		files: map[string]string{
			"static/img/logo.png":        "png",
			"src/css/custom.css":         ":root {}",
			"sidebars.yaml":              "tutorialSidebar:\n  - type: autogenerated\n    dir: .\n",
			"docs/intro.md":              "# Intro\n\nNext: [setup](./tutorial/setup.md), [blog](/blog), ![logo](/img/logo.png)\n",
			"docs/tutorial/setup.md":     "# Setup\n\nBack to [intro](../intro.md) or [deploy](deploy).\n\n![diagram](./diagram.png)\n",
			"docs/tutorial/deploy.md":    "# Deploy\n",
			"docs/tutorial/diagram.png":  "png",
			"i18n/fr/docs/intro.md":      "# Présentation\n\nVoir [setup](./tutorial/setup.md).\n",
			"blog/2021-08-26-welcome.md": "# Welcome\n\nRead the [docs](/docs/intro) and <a href=\"/blog/archive\">the archive</a>.\n",
			"src/pages/index.js":         "export default function Home() {}",
		},
	}
}

func (f *fixture) check(t *testing.T) (*Result, string) {
	t.Helper()
	writeFiles(t, f.dir, f.files)
	s, err := site.Resolve(context.Background(), f.cfg, f.dir, site.Options{})
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res, err := NewChecker(logger).Check(context.Background(), s)
	require.NoError(t, err)
	return res, logs.String()
}

func TestCheck_CleanSite(t *testing.T) {
	res, logs := newFixture(t).check(t)
	require.Empty(t, res.Issues, logs)
	require.False(t, res.Fatal())
	require.Positive(t, res.LinksChecked)
}

func TestCheck_BrokenNavbarLinkUnderThrowIsFatal(t *testing.T) {
	f := newFixture(t)
	f.cfg.ThemeConfig.Navbar.Items[1].To = "/news"

	res, logs := f.check(t)
	require.True(t, res.Fatal())
	require.Len(t, res.Issues, 2)
	for _, issue := range res.Issues {
		require.Equal(t, KindBrokenLink, issue.Kind)
		require.Equal(t, config.SeverityThrow, issue.Severity)
		require.Equal(t, "theme_config.navbar.items[1]", issue.Source)
	}
	require.Equal(t, "/news", res.Issues[0].Resolved)
	require.Equal(t, "/fr/news", res.Issues[1].Resolved)
	require.Contains(t, logs, "level=ERROR")
	require.Len(t, res.FatalIssues(), 2)
}

func TestCheck_BrokenMarkdownLinkUnderWarnOnlyWarns(t *testing.T) {
	f := newFixture(t)
	f.files["docs/tutorial/deploy.md"] = "# Deploy\n\nSee [missing](./missing.md).\n"

	res, logs := f.check(t)
	require.False(t, res.Fatal())
	require.Len(t, res.Issues, 2)
	var locales []string
	for _, issue := range res.Issues {
		require.Equal(t, KindBrokenMarkdownLink, issue.Kind)
		require.Equal(t, config.SeverityWarn, issue.Severity)
		require.Equal(t, "docs/tutorial/deploy.md", issue.Source)
		require.Equal(t, 3, issue.Line)
		require.Equal(t, "docs/tutorial/missing.md", issue.Resolved)
		locales = append(locales, issue.Locale)
	}
	require.ElementsMatch(t, []string{"en", "fr"}, locales)
	require.Contains(t, logs, "level=WARN")
	require.Contains(t, logs, "Broken Markdown link to ./missing.md")
	require.Equal(t, 2, res.CountBySeverity(config.SeverityWarn))
}

func TestCheck_BrokenRouteLinkInContent(t *testing.T) {
	f := newFixture(t)
	f.files["docs/tutorial/deploy.md"] = "# Deploy\n\n[gone](/docs/gone) and [rel](gone-too)\n"

	res, _ := f.check(t)
	require.True(t, res.Fatal())
	resolved := map[string]bool{}
	for _, issue := range res.Issues {
		require.Equal(t, KindBrokenLink, issue.Kind)
		resolved[issue.Resolved] = true
	}
	require.True(t, resolved["/docs/gone"])
	require.True(t, resolved["/fr/docs/gone"])
	require.True(t, resolved["/docs/tutorial/gone-too"])
	require.Equal(t, 4, res.CountByKind(KindBrokenLink))
}

func TestCheck_LogPolicyAndIgnorePolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.OnBrokenMarkdownLinks = config.SeverityLog
	f.cfg.OnBrokenLinks = config.SeverityIgnore
	f.files["docs/tutorial/deploy.md"] = "# Deploy\n\n[missing](./missing.md) and [gone](/docs/gone)\n"

	res, logs := f.check(t)
	require.False(t, res.Fatal())
	require.Len(t, res.Issues, 2)
	for _, issue := range res.Issues {
		require.Equal(t, config.SeverityLog, issue.Severity)
	}
	require.Contains(t, logs, "level=INFO")
	require.NotContains(t, logs, "/docs/gone")
}

func TestCheck_FallbackDocReportsEachLocale(t *testing.T) {
	f := newFixture(t)
	f.files["docs/tutorial/deploy.md"] = "# Deploy\n\n[missing](./missing.md) and [gone](/docs/gone)\n"

	res, _ := f.check(t)
	byKind := map[IssueKind][]string{}
	for _, issue := range res.Issues {
		byKind[issue.Kind] = append(byKind[issue.Kind], issue.Locale)
	}
	require.ElementsMatch(t, []string{"en", "fr"}, byKind[KindBrokenMarkdownLink])
	require.ElementsMatch(t, []string{"en", "fr"}, byKind[KindBrokenLink])
}

func TestCheck_TranslationFallsBackToDefaultTree(t *testing.T) {
	f := newFixture(t)
	f.files["i18n/fr/docs/intro.md"] = "# Présentation\n\n[déployer](./tutorial/deploy.md) [absent](./absent.md)\n"

	res, _ := f.check(t)
	require.Len(t, res.Issues, 1)
	require.Equal(t, "fr", res.Issues[0].Locale)
	require.Equal(t, "i18n/fr/docs/intro.md", res.Issues[0].Source)
	require.Equal(t, "i18n/fr/docs/absent.md", res.Issues[0].Resolved)
}

func TestCheck_DuplicateRoutes(t *testing.T) {
	f := newFixture(t)
	f.files["docs/intro-copy.md"] = "---\nslug: /intro\n---\n# Copy\n"

	res, _ := f.check(t)
	require.Equal(t, 2, res.CountByKind(KindDuplicateRoute))
	require.False(t, res.Fatal())
}

func TestCheck_Canceled(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.dir, f.files)
	s, err := site.Resolve(context.Background(), f.cfg, f.dir, site.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewChecker(nil).Check(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
}
