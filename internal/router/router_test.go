package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/university-recommender/internal/cache"
	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/enrich"
	"github.com/actuallystonmai/university-recommender/internal/handler"
	"github.com/actuallystonmai/university-recommender/internal/metrics"
	"github.com/actuallystonmai/university-recommender/internal/recommend"
	"github.com/actuallystonmai/university-recommender/internal/service"
)

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Generate(context.Context, enrich.Kind, enrich.Request) (string, error) {
	return s.text, s.err
}

func testTable() *domain.Table {
	return domain.NewTable([]domain.University{
		{Name: "Paris A", Country: "France", AcademicReputation: 90, InternationalRatio: 90, EmploymentRate: 90},
		{Name: "Paris B", Country: "France", AcademicReputation: 85, InternationalRatio: 88, EmploymentRate: 92},
		{Name: "Paris C", Country: "France", AcademicReputation: 95, InternationalRatio: 81, EmploymentRate: 85},
		{Name: "Berlin A", Country: "Germany", AcademicReputation: 10, InternationalRatio: 10, EmploymentRate: 10},
		{Name: "Berlin B", Country: "Germany", AcademicReputation: 15, InternationalRatio: 5, EmploymentRate: 12},
	})
}

func newServer(t *testing.T, table *domain.Table, narrator service.Narrator) (http.Handler, *metrics.Manager) {
	t.Helper()
	cfg := recommend.DefaultPipelineConfig()
	cfg.Model.K = 2

	svc := service.NewService(service.Deps{
		Table:    table,
		Pipeline: recommend.NewPipeline(cfg),
		Cache:    cache.NewMemoryCache(time.Minute),
		Sessions: cache.NewMemorySessionStore(time.Hour),
		Narrator: narrator,
	}, service.Options{})
	m := metrics.NewManager()
	return Setup(handler.NewHandler(svc), m), m
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRecommendText(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)

	rec := do(t, h, http.MethodPost, "/recommendations",
		`{"query":"a university in France with academic reputation of 90, diversity of 90 and employment rates around 90","limit":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[handler.RecommendationResponse](t, rec)
	assert.Equal(t, domain.StatusMatched, resp.Status)
	require.Len(t, resp.Universities, 2)
	assert.Equal(t, "Paris C", resp.Universities[0].Name)
	assert.Equal(t, "Very High", resp.Universities[0].AcademicCategory)
	assert.Equal(t, 2, resp.Metadata.TotalCount)
	assert.False(t, resp.Metadata.CacheHit)

	metricsRec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `unirec_http_requests_total{method="POST",route="/recommendations",status="200"} 1`)
}

func TestRecommendFiltersFallback(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)

	rec := do(t, h, http.MethodPost, "/recommendations",
		`{"filters":{"country":"germany","academic_reputation":90,"international_ratio":90,"employment_rate":90}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[handler.RecommendationResponse](t, rec)
	assert.Equal(t, domain.StatusCountryFallback, resp.Status)
	assert.NotEmpty(t, resp.Warning)
}

func TestRecommendErrors(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)

	cases := []struct {
		name string
		body string
		code int
		err  string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid_json"},
		{"slider out of range", `{"filters":{"academic_reputation":101}}`, http.StatusBadRequest, "validation_error"},
		{"bad session id", `{"query":"x","session_id":"abc"}`, http.StatusBadRequest, "validation_error"},
		{"no input", `{}`, http.StatusBadRequest, "invalid_preference"},
		{"text out of range", `{"query":"academic reputation of 150"}`, http.StatusUnprocessableEntity, "encoding_failed"},
		{"unknown session", `{"query":"academic reputation of 50","session_id":"4b0e5c2a-3f0e-4a63-9f3e-1c2b3d4e5f60"}`, http.StatusNotFound, "session_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/recommendations", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.Equal(t, tc.err, decode[handler.ErrorResponse](t, rec).Error)
		})
	}
}

func TestRecommendClusteringFailure(t *testing.T) {
	table := domain.NewTable([]domain.University{
		{Name: "A", Country: "X", AcademicReputation: 50, InternationalRatio: 50, EmploymentRate: 50},
		{Name: "B", Country: "X", AcademicReputation: 55, InternationalRatio: 55, EmploymentRate: 55},
	})
	h, _ := newServer(t, table, nil)

	rec := do(t, h, http.MethodPost, "/recommendations", `{"query":"academic reputation of 50"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "clustering_failed", decode[handler.ErrorResponse](t, rec).Error)
}

func TestRecommendBatch(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)

	rec := do(t, h, http.MethodPost, "/recommendations/batch",
		`{"requests":[{"query":"academic reputation of 90"},{"query":"academic reputation of 150"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[domain.BatchResponse](t, rec)
	assert.Equal(t, 1, resp.Summary.SuccessCount)
	assert.Equal(t, 1, resp.Summary.FailedCount)
	assert.Equal(t, "encoding_failed", resp.Results[1].Error)

	rec = do(t, h, http.MethodPost, "/recommendations/batch", `{"requests":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightRoutes(t *testing.T) {
	h, _ := newServer(t, testTable(), nil)

	rec := do(t, h, http.MethodGet, "/universities/competitive?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	comp := decode[handler.CompetitiveResponse](t, rec)
	require.Len(t, comp.Universities, 2)
	assert.Equal(t, "Paris A", comp.Universities[0].Name)

	rec = do(t, h, http.MethodGet, "/universities/competitive?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/universities/tiers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.TiersResponse](t, rec).Tiers, 5)

	rec = do(t, h, http.MethodGet, "/countries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"France", "Germany"}, decode[handler.CountriesResponse](t, rec).Countries)

	rec = do(t, h, http.MethodGet, "/insights/employment-trend?international_ratio=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	trend := decode[handler.TrendResponse](t, rec)
	require.NotNil(t, trend.PredictedRate)
	assert.InDelta(t, trend.Trend.Predict(50), *trend.PredictedRate, 1e-9)

	rec = do(t, h, http.MethodGet, "/insights/employment-trend?international_ratio=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmploymentTrendTooFewRows(t *testing.T) {
	h, _ := newServer(t, domain.NewTable([]domain.University{{Name: "A", Country: "X"}}), nil)

	rec := do(t, h, http.MethodGet, "/insights/employment-trend", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNarrativeRoutes(t *testing.T) {
	h, _ := newServer(t, testTable(), stubNarrator{text: "A strong school."})

	rec := do(t, h, http.MethodPost, "/universities/Paris%20A/narratives/overview", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	n := decode[domain.Narrative](t, rec)
	assert.True(t, n.Available)
	assert.Equal(t, "A strong school.", n.Text)

	rec = do(t, h, http.MethodPost, "/universities/Paris%20A/narratives/compare", `{"compare":["Berlin A"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/universities/Nowhere/narratives/overview", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/universities/Paris%20A/narratives/horoscope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNarrativeUnavailable(t *testing.T) {
	h, _ := newServer(t, testTable(), stubNarrator{err: errors.New("upstream down")})

	rec := do(t, h, http.MethodPost, "/universities/Paris%20A/narratives/tips", `{"degree":"Graduate"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	n := decode[domain.Narrative](t, rec)
	assert.False(t, n.Available)
	assert.NotEmpty(t, n.Reason)
}

func TestSessionRoutes(t *testing.T) {
	h, _ := newServer(t, testTable(), stubNarrator{text: "Apply early."})

	rec := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decode[domain.Session](t, rec)
	require.NotEmpty(t, sess.ID)
	base := "/sessions/" + sess.ID

	rec = do(t, h, http.MethodPost, base+"/bookmarks", `{"university":"paris b"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Paris B"}, decode[domain.Session](t, rec).Bookmarks)

	rec = do(t, h, http.MethodPost, base+"/comparisons", `{"university":"Berlin A"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, base+"/deadlines", `{"university":"Paris B","deadline":"2027-01-15"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, base+"/deadlines", `{"university":"Paris B","deadline":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/chat", `{"question":"When should I apply?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	chat := decode[service.ChatResult](t, rec)
	assert.True(t, chat.Available)
	assert.Equal(t, "Apply early.", chat.Turn.Answer)

	rec = do(t, h, http.MethodPost, "/recommendations",
		`{"query":"academic reputation of 90, diversity of 90 and employment rates around 90","session_id":"`+sess.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decode[domain.Session](t, rec)
	assert.Equal(t, []string{"Berlin A"}, loaded.Comparison)
	assert.Equal(t, "2027-01-15", loaded.Deadlines["Paris B"])
	assert.Len(t, loaded.Conversation, 1)
	assert.NotEmpty(t, loaded.Recommended)

	rec = do(t, h, http.MethodGet, "/sessions/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "session_not_found"))
}
