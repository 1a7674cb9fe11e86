package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	okBefore := testutil.ToFloat64(upstreamRequestsCounter.WithLabelValues(KindRaw, "ok"))
	errBefore := testutil.ToFloat64(upstreamRequestsCounter.WithLabelValues(KindRaw, "error"))

	ObserveUpstream(KindRaw, nil)
	ObserveUpstream(KindRaw, errors.New("boom"))
	ObserveUpstream(KindRaw, nil)

	require.Equal(t, okBefore+2, testutil.ToFloat64(upstreamRequestsCounter.WithLabelValues(KindRaw, "ok")))
	require.Equal(t, errBefore+1, testutil.ToFloat64(upstreamRequestsCounter.WithLabelValues(KindRaw, "error")))
}

func TestUpstreamRequestsLabels(t *testing.T) {
	ObserveUpstream(KindList, nil)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() != "gistsearch_upstream_requests_total" {
			continue
		}
		found = true
		for _, m := range mf.GetMetric() {
			var names []string
			for _, l := range m.GetLabel() {
				names = append(names, l.GetName())
			}
			require.Equal(t, []string{"kind", "outcome"}, names)
		}
	}
	require.True(t, found)
}

func TestMetricsServer(t *testing.T) {
	ObserveSearch("success", 0.1)

	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "gistsearch_searches_total")
	require.Contains(t, w.Body.String(), "gistsearch_search_duration_seconds")
}
