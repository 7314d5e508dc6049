package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing,
// so components can be built without a registry in tests.
type Metrics struct {
	pipelineRequests *prometheus.CounterVec
	pipelineLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	chartRenders     *prometheus.CounterVec
	uploads          *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pipelineRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autodash",
			Name:      "pipeline_requests_total",
			Help:      "Calls to the pipeline backend by operation and outcome.",
		}, []string{"op", "outcome"}),
		pipelineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autodash",
			Name:      "pipeline_request_seconds",
			Help:      "Latency of pipeline backend calls.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autodash",
			Name:      "dashboard_cache_lookups_total",
			Help:      "Fallback reads of cached dashboard documents.",
		}, []string{"result"}),
		chartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autodash",
			Name:      "chart_renders_total",
			Help:      "Rendered charts by type and outcome.",
		}, []string{"type", "outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autodash",
			Name:      "uploads_total",
			Help:      "Spreadsheet submissions by upload control and outcome.",
		}, []string{"control", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.pipelineRequests, m.pipelineLatency, m.cacheLookups, m.chartRenders, m.uploads)
	}
	return m
}

func (m *Metrics) ObservePipeline(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRequests.WithLabelValues(op, outcome).Inc()
	m.pipelineLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ChartRendered(chartType, outcome string) {
	if m == nil {
		return
	}
	m.chartRenders.WithLabelValues(chartType, outcome).Inc()
}

func (m *Metrics) Upload(control, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(control, outcome).Inc()
}
