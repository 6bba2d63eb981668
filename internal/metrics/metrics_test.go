package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("discover", time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("discover", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.AddPages("collection", 3)
	r.SetCollectionSize(3)
	r.IncConvertFailure()
}

func gathered(t *testing.T, reg *prom.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStageDuration("render_pages", 20*time.Millisecond)
	r.ObserveStageDuration("resolve_home", time.Millisecond)
	r.ObserveBuildDuration(50 * time.Millisecond)
	r.IncStageResult("render_pages", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.AddPages("collection", 3)
	r.AddPages("standalone", 2)
	r.AddPages("ignored", 0)
	r.SetCollectionSize(3)
	r.IncConvertFailure()

	got := gathered(t, reg)
	require.Equal(t, 2.0, got["sitebuilder_stage_duration_seconds"])
	require.Equal(t, 1.0, got["sitebuilder_build_duration_seconds"])
	require.Equal(t, 1.0, got["sitebuilder_stage_results_total"])
	require.Equal(t, 1.0, got["sitebuilder_build_outcomes_total"])
	require.Equal(t, 5.0, got["sitebuilder_pages_total"])
	require.Equal(t, 3.0, got["sitebuilder_collection_size"])
	require.Equal(t, 1.0, got["sitebuilder_convert_failures_total"])
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveBuildDuration(time.Second)
	r.IncConvertFailure()
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetCollectionSize(7)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "sitebuilder_collection_size 7")
}
