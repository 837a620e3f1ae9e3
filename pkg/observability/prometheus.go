package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/spotfinder/pkg/errors"
)

const (
	namespace = "spotfinder"

	resultLabel  = "result"
	keyTypeLabel = "key_type"
	methodLabel  = "method"
	routeLabel   = "route"
	statusLabel  = "status"
	codeLabel    = "code"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	loads         *prometheus.CounterVec
	loadLatency   prometheus.Histogram
	sceneObjects  prometheus.Histogram
	searches      *prometheus.CounterVec
	searchLatency prometheus.Histogram
	gridPoints    prometheus.Histogram
	validFraction prometheus.Histogram
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	httpErrors    *prometheus.CounterVec
	httpInFlight  prometheus.Gauge
}

// NewMetrics registers the spotfinder collectors with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_loads_total",
			Help:      "The number of scene loads by result.",
		}, []string{resultLabel}),
		loadLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scene_load_seconds",
			Help:      "The time to decode and validate a scene.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		sceneObjects: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scene_objects",
			Help:      "The number of objects per loaded scene.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The number of placement searches by result.",
		}, []string{resultLabel}),
		searchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_seconds",
			Help:      "The time to run one placement search.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 9),
		}),
		gridPoints: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_grid_points",
			Help:      "The number of grid points evaluated per search.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}),
		validFraction: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_valid_fraction",
			Help:      "The share of grid points that were collision-free.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{keyTypeLabel, resultLabel}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{keyTypeLabel}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route and status.",
		}, []string{methodLabel, routeLabel, statusLabel}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "The time to serve an HTTP request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{methodLabel, routeLabel}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by error code.",
		}, []string{methodLabel, routeLabel, codeLabel}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, objectCount int, d time.Duration, err error) {
	m.loads.With(prometheus.Labels{resultLabel: resultOf(err)}).Inc()
	m.loadLatency.Observe(d.Seconds())
	if err == nil {
		m.sceneObjects.Observe(float64(objectCount))
	}
}

func (m *Metrics) OnSearchStart(context.Context, int) {}

func (m *Metrics) OnSearchComplete(_ context.Context, gridPoints, totalValid int, d time.Duration, err error) {
	m.searches.With(prometheus.Labels{resultLabel: resultOf(err)}).Inc()
	m.searchLatency.Observe(d.Seconds())
	if err != nil {
		return
	}
	m.gridPoints.Observe(float64(gridPoints))
	if gridPoints > 0 {
		m.validFraction.Observe(float64(totalValid) / float64(gridPoints))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.With(prometheus.Labels{keyTypeLabel: keyType, resultLabel: "hit"}).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.With(prometheus.Labels{keyTypeLabel: keyType, resultLabel: "miss"}).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.With(prometheus.Labels{keyTypeLabel: keyType, resultLabel: "set"}).Inc()
	m.cacheBytes.With(prometheus.Labels{keyTypeLabel: keyType}).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.With(prometheus.Labels{
		methodLabel: method,
		routeLabel:  route,
		statusLabel: strconv.Itoa(status),
	}).Inc()
	m.httpLatency.With(prometheus.Labels{methodLabel: method, routeLabel: route}).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, err error) {
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	m.httpErrors.With(prometheus.Labels{methodLabel: method, routeLabel: route, codeLabel: code}).Inc()
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
