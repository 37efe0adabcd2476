// Package monitoring exposes Prometheus metrics and health checks for the
// page server.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conneroisu/pageforge/internal/viewcache"
)

// Request outcomes recorded by ObserveRequest.
const (
	StateNotReady  = "not_ready"
	StateStatic    = "static"
	StateAsset     = "asset"
	StateHotUpdate = "hot_update"
	StateRender    = "render"
	StateRedirect  = "redirect"
	StateFailure   = "failure"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pageforge").
	Namespace string

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: a fresh registry
	Registry *prometheus.Registry
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the server's collectors.
type Metrics struct {
	registry        *prometheus.Registry
	namespace       string
	requestsTotal   *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	rebuildsTotal   *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	hotClients      prometheus.Gauge
}

// NewMetrics registers the collectors on the configured registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "pageforge",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry:  config.Registry,
		namespace: config.Namespace,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "requests_total",
			Help:      "Requests handled by the render pipeline, by outcome",
		}, []string{"state"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Page render duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"status"}),

		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "rebuilds_total",
			Help:      "Development rebuilds by result",
		}, []string{"result"}),

		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Development rebuild duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}),

		hotClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "hot_reload_clients",
			Help:      "Connected hot reload clients",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest counts one pipeline request.
func (m *Metrics) ObserveRequest(state string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(state).Inc()
}

// ObserveRender records a render and its response status.
func (m *Metrics) ObserveRender(status int, d time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(http.StatusText(status)).Observe(d.Seconds())
}

// ObserveRebuild records a development rebuild.
func (m *Metrics) ObserveRebuild(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.rebuildsTotal.WithLabelValues(result).Inc()
	m.rebuildDuration.Observe(d.Seconds())
}

// HotClientConnected adjusts the connected hot reload client gauge.
func (m *Metrics) HotClientConnected(delta int) {
	if m == nil {
		return
	}
	m.hotClients.Add(float64(delta))
}

// RegisterCacheStats exposes view cache usage. stats is read at scrape time
// so it can follow whichever cache the current project uses.
func (m *Metrics) RegisterCacheStats(stats func() viewcache.Stats) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "view_cache_entries",
		Help:      "Rendered pages held in the view cache",
	}, func() float64 { return float64(stats().Entries) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "view_cache_hits",
		Help:      "View cache hits since the current project was installed",
	}, func() float64 { return float64(stats().Hits) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "view_cache_misses",
		Help:      "View cache misses since the current project was installed",
	}, func() float64 { return float64(stats().Misses) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
