// Package metrics records pipeline, cache and HTTP activity as Prometheus
// metrics.
//
// A [Metrics] value implements the hook interfaces of pkg/observability.
// [Metrics.Install] registers it globally so every pipeline run, cache
// lookup and HTTP request is counted:
//
//	m := metrics.New()
//	m.Install()
//	defer observability.Reset()
//
// The HTTP server exposes the registry on /metrics. The CLI can write it to
// a node-exporter textfile with [Metrics.WriteToTextfile].
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/dbnplot/pkg/observability"
)

const namespace = "dbnplot"

// Metrics holds the dbnplot collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	templates    prometheus.Histogram

	expands        *prometheus.CounterVec
	expandDuration prometheus.Histogram
	diagramNodes   prometheus.Histogram
	diagramEdges   prometheus.Histogram

	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	artifactBytes  *prometheus.HistogramVec

	cacheRequests *prometheus.CounterVec
	cacheErrors   *prometheus.CounterVec
	cacheBytes    prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// Interface compliance checks.
var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_loads_total",
			Help:      "Model files loaded, by format and status.",
		}, []string{"format", "status"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_load_duration_seconds",
			Help:      "Time spent parsing model files and attaching templates.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"format"}),
		templates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_templates",
			Help:      "Number of node templates per loaded model.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),

		expands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Slice expansions, by status.",
		}, []string{"status"}),
		expandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expansion_duration_seconds",
			Help:      "Time spent expanding templates over slices.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		diagramNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagram_nodes",
			Help:      "Placed nodes per expanded diagram.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		diagramEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagram_edges",
			Help:      "Edges per expanded diagram.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Rendered artifacts, by format, engine and status.",
		}, []string{"format", "engine", "status"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering artifacts.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format", "engine"}),
		artifactBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of rendered artifacts.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),

		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Artifact cache lookups, by key type and result.",
		}, []string{"key_type", "result"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Artifact cache failures, by operation.",
		}, []string{"op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the artifact cache.",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	m.registry.MustRegister(
		m.loads, m.loadDuration, m.templates,
		m.expands, m.expandDuration, m.diagramNodes, m.diagramEdges,
		m.renders, m.renderDuration, m.artifactBytes,
		m.cacheRequests, m.cacheErrors, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every dbnplot collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// WriteToTextfile writes the current metric values to path in the text
// format read by the node exporter's textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Pipeline hooks
// =============================================================================

// OnLoadStart implements [observability.PipelineHooks].
func (m *Metrics) OnLoadStart(context.Context, string) {}

// OnLoadComplete implements [observability.PipelineHooks].
func (m *Metrics) OnLoadComplete(_ context.Context, format string, templates int, d time.Duration, err error) {
	m.loads.WithLabelValues(format, status(err)).Inc()
	m.loadDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.templates.Observe(float64(templates))
	}
}

// OnExpandStart implements [observability.PipelineHooks].
func (m *Metrics) OnExpandStart(context.Context, int) {}

// OnExpandComplete implements [observability.PipelineHooks].
func (m *Metrics) OnExpandComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	m.expands.WithLabelValues(status(err)).Inc()
	m.expandDuration.Observe(d.Seconds())
	if err == nil {
		m.diagramNodes.Observe(float64(nodes))
		m.diagramEdges.Observe(float64(edges))
	}
}

// OnRenderStart implements [observability.PipelineHooks].
func (m *Metrics) OnRenderStart(context.Context, string, string) {}

// OnRenderComplete implements [observability.PipelineHooks].
func (m *Metrics) OnRenderComplete(_ context.Context, format, engine string, size int, d time.Duration, err error) {
	m.renders.WithLabelValues(format, engine, status(err)).Inc()
	m.renderDuration.WithLabelValues(format, engine).Observe(d.Seconds())
	if err == nil {
		m.artifactBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// =============================================================================
// Cache hooks
// =============================================================================

// OnCacheHit implements [observability.CacheHooks].
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (m *Metrics) OnCacheSet(_ context.Context, _ string, size int) {
	m.cacheBytes.Add(float64(size))
}

// OnCacheError implements [observability.CacheHooks].
func (m *Metrics) OnCacheError(_ context.Context, op string, _ error) {
	m.cacheErrors.WithLabelValues(op).Inc()
}

// =============================================================================
// HTTP hooks
// =============================================================================

// OnRequest implements [observability.HTTPHooks].
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

// OnResponse implements [observability.HTTPHooks].
func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
