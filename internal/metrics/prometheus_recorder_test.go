package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("links", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncStageResult("links", ResultSuccess)
	pr.IncRunOutcome(ResultWarning)
	pr.IncRunOutcome(ResultWarning)
	pr.SetBrokenLinks("broken_markdown_link", 3)
	pr.SetLinksChecked(42)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	require.ElementsMatch(t, []string{
		"siteconf_stage_duration_seconds",
		"siteconf_run_duration_seconds",
		"siteconf_stage_results_total",
		"siteconf_run_outcomes_total",
		"siteconf_broken_links",
		"siteconf_links_checked",
	}, names)

	path := filepath.Join(t.TempDir(), "m.prom")
	require.NoError(t, pr.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `siteconf_run_outcomes_total{outcome="warning"} 2`)
	require.Contains(t, string(data), `siteconf_broken_links{kind="broken_markdown_link"} 3`)
	require.Contains(t, string(data), "siteconf_links_checked 42")
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("load", time.Second)
	pr.IncRunOutcome(ResultFatal)
	pr.SetBrokenLinks("broken_link", 1)
	require.NoError(t, pr.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	require.Nil(t, pr.Registry())
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.SetBrokenLinks("broken_link", 2)

	path := filepath.Join(t.TempDir(), "siteconf.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `siteconf_broken_links{kind="broken_link"} 2`)
}

func TestHTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())
	pr.SetLinksChecked(7)

	rec := httptest.NewRecorder()
	HTTPHandler(pr.Registry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "siteconf_links_checked 7")
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
