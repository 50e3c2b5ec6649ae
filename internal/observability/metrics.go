package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so components can take it unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	reports      *prometheus.CounterVec
	llmRequests  *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	ingestPosts  *prometheus.CounterVec
	cycles       *prometheus.CounterVec
	snapshotAge  prometheus.Gauge
	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Reports written, by rendering strategy",
		}, []string{"strategy"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Generative-text calls, by provider and status",
		}, []string{"provider", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Generative-text call latency",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"provider"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Bounded step executions, by step and status",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Bounded step wall time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		ingestPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_posts_total",
			Help:      "Posts written to the graph, by status",
		}, []string{"status"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_cycles_total",
			Help:      "Scheduler cycles, by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		snapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_age_seconds",
			Help:      "Age of the newest snapshot at the last freshness check",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Status server requests, by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Status server request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	registry.MustRegister(
		m.reports,
		m.llmRequests,
		m.llmLatency,
		m.steps,
		m.stepDuration,
		m.ingestPosts,
		m.cycles,
		m.snapshotAge,
		m.apiRequests,
		m.apiLatency,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveReport(strategy string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveLLMRequest(provider string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmRequests.WithLabelValues(provider, status).Inc()
	m.llmLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) ObserveStep(step, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(step, status).Inc()
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) ObserveIngestedPost(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.ingestPosts.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveCycle(trigger, outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) SetSnapshotAge(age time.Duration) {
	if m == nil {
		return
	}
	m.snapshotAge.Set(age.Seconds())
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(route).Observe(d.Seconds())
}
