package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devscast/siteconf/internal/check"
	"github.com/devscast/siteconf/internal/config"
	"github.com/devscast/siteconf/internal/linkcheck"
	"github.com/devscast/siteconf/internal/metrics"
)

func sampleReport() *check.Report {
	return &check.Report{
		RunID:      "run-1",
		ConfigPath: "site/siteconf.yaml",
		SiteDir:    "site",
		Duration:   42 * time.Millisecond,
		Outcome:    metrics.ResultFatal,
		Config:     config.ExampleConfig(),
		Stages: []check.StageTiming{
			{Stage: check.StageLoad, Result: metrics.ResultSuccess, Duration: time.Millisecond},
			{Stage: check.StageLinks, Result: metrics.ResultFatal, Duration: 3 * time.Millisecond},
		},
		Links: &linkcheck.Result{
			LinksChecked: 10,
			Issues: []linkcheck.Issue{
				{Kind: linkcheck.KindBrokenMarkdownLink, Severity: config.SeverityWarn, Locale: "en", Source: "docs/intro.md", Line: 3, Target: "./missing.md", Resolved: "docs/missing.md", Message: "Broken Markdown link"},
				{Kind: linkcheck.KindBrokenLink, Severity: config.SeverityThrow, Locale: "en", Source: "theme_config.navbar.items[1]", Target: "/news", Resolved: "/news", Message: "Broken link"},
				{Kind: linkcheck.KindBrokenLink, Severity: config.SeverityThrow, Locale: "fr", Source: "theme_config.navbar.items[1]", Target: "/news", Resolved: "/fr/news", Message: "Broken link"},
			},
		},
	}
}

func TestTextFormatter_GroupsIssuesBySource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&buf, sampleReport()))
	out := buf.String()

	require.Contains(t, out, "Checking site: Devscast Engineering (site)")
	require.Contains(t, out, "⚠ docs/intro.md")
	require.Contains(t, out, "✗ theme_config.navbar.items[1]")
	require.Contains(t, out, "line 3, locale en")
	require.Contains(t, out, "/news -> /fr/news")
	require.Contains(t, out, "10 links checked")
	require.Contains(t, out, "2 errors (fails the run)")
	require.Contains(t, out, "1 warning\n")
	require.Contains(t, out, "❌ Site has broken links")
	require.Less(t, bytes.Index(buf.Bytes(), []byte("docs/intro.md")), bytes.Index(buf.Bytes(), []byte("theme_config")))
}

func TestTextFormatter_Verdicts(t *testing.T) {
	cases := map[string]*check.Report{
		"✨ Site configuration and links are valid.": {Outcome: metrics.ResultSuccess},
		"⚠️  Site has link warnings.":               {Outcome: metrics.ResultWarning},
		"❌ Check failed during validate: bad locale": {
			Outcome: metrics.ResultFatal,
			Stages:  []check.StageTiming{{Stage: check.StageLoad}, {Stage: check.StageValidate}},
			Err:     errors.New("bad locale"),
		},
	}
	for want, report := range cases {
		var buf bytes.Buffer
		require.NoError(t, NewTextFormatter().Format(&buf, report))
		require.Contains(t, buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&buf, sampleReport()))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "run-1", out.RunID)
	require.Equal(t, "fatal", out.Outcome)
	require.Equal(t, 2, out.ErrorCount)
	require.Equal(t, 1, out.WarningCount)
	require.Equal(t, 10, out.LinksChecked)
	require.Len(t, out.Issues, 3)
	require.Len(t, out.Stages, 2)
	require.Equal(t, []string{"/news", "/news"}, out.BySource["theme_config.navbar.items[1]"])
}

func TestJSONFormatter_EmptyIssuesIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, &check.Report{Outcome: metrics.ResultSuccess}))
	require.Contains(t, buf.String(), `"issues": []`)
}
