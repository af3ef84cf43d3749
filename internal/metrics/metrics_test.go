package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounts(t *testing.T) {
	m := NewManager()

	m.PipelineRun("matched", 5*time.Millisecond)
	m.PipelineRun("matched", 5*time.Millisecond)
	m.PipelineRun("country_fallback", time.Millisecond)
	m.PipelineError("fit")
	m.Cache(CacheHit)
	m.Narrative("overview", "ok", time.Second)
	m.DatasetRows(42)
	m.HTTPRequest("GET", "/health", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("country_fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineErrors.WithLabelValues("fit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.datasetRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewManager()
	m.PipelineRun("no_match", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `unirec_pipeline_runs_total{status="no_match"} 1`))
}

func TestManagersAreIndependent(t *testing.T) {
	a, b := NewManager(), NewManager()
	a.Cache(CacheMiss)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheLookups.WithLabelValues(CacheMiss)))
}
