// Package metrics exposes Prometheus instruments for the recommendation
// pipeline, the result cache and the narrative service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "unirec"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Recorder is what the service reports into. Tests pass Nop.
type Recorder interface {
	PipelineRun(status string, elapsed time.Duration)
	PipelineError(kind string)
	Cache(result string)
	Narrative(kind, outcome string, elapsed time.Duration)
	DatasetRows(n int)
}

type Manager struct {
	registry *prometheus.Registry

	pipelineRuns     *prometheus.CounterVec
	pipelineErrors   *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
	narratives       *prometheus.CounterVec
	narrativeLatency *prometheus.HistogramVec
	datasetRows      prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewManager registers every instrument on a fresh registry so tests and
// multiple servers in one process do not collide.
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auto := promauto.With(reg)

	return &Manager{
		registry: reg,
		pipelineRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome status (matched, country_fallback, no_match).",
		}, []string{"status"}),
		pipelineErrors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Pipeline runs that failed, by error kind.",
		}, []string{"kind"}),
		pipelineDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Wall time of encode, fit, predict and rank.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		cacheLookups: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Recommendation cache lookups by result.",
		}, []string{"result"}),
		narratives: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narrative",
			Name:      "requests_total",
			Help:      "Narrative generation requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		narrativeLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "narrative",
			Name:      "duration_seconds",
			Help:      "Narrative generation latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		datasetRows: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Universities in the loaded dataset.",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Manager) PipelineRun(status string, elapsed time.Duration) {
	m.pipelineRuns.WithLabelValues(status).Inc()
	m.pipelineDuration.Observe(elapsed.Seconds())
}

func (m *Manager) PipelineError(kind string) {
	m.pipelineErrors.WithLabelValues(kind).Inc()
}

func (m *Manager) Cache(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Manager) Narrative(kind, outcome string, elapsed time.Duration) {
	m.narratives.WithLabelValues(kind, outcome).Inc()
	m.narrativeLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Manager) DatasetRows(n int) {
	m.datasetRows.Set(float64(n))
}

// HTTPRequest records one served request. route is the router pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Manager) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Manager) Registry() *prometheus.Registry { return m.registry }

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type nop struct{}

// Nop discards everything.
var Nop Recorder = nop{}

func (nop) PipelineRun(string, time.Duration)       {}
func (nop) PipelineError(string)                    {}
func (nop) Cache(string)                            {}
func (nop) Narrative(string, string, time.Duration) {}
func (nop) DatasetRows(int)                         {}
