// Package metrics exposes the prometheus registry and collectors for the deck host.
package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics owns a private registry so tests and embedders never collide
// with the global default registry.
type ServerMetrics struct {
	reg                  *prometheus.Registry
	handler              http.Handler
	inflight             prometheus.Gauge
	reqTotal             *prometheus.CounterVec
	reqDur               *prometheus.HistogramVec
	respBytes            *prometheus.HistogramVec
	httpPanicTotal       prometheus.Counter
	buildInfo            *prometheus.GaugeVec
	ratelimitDeniedTotal prometheus.Counter
	deckRendersTotal     *prometheus.CounterVec
	wsClients            prometheus.Gauge
	navigationTotal      prometheus.Counter
}

// New returns a fresh registry + standard collectors + deck metrics
// safe labels only (method, route, code) to avoid path/cardinality explosions
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response size by method and route",
			Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
		}, []string{"method", "route"}),
		httpPanicTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Total number of recovered handler panics",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata (value is always 1)",
		}, []string{"app", "version", "go_version"}),
		ratelimitDeniedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by rate limiter",
		}),
		deckRendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deck_renders_total",
			Help: "Total deck page renders by result",
		}, []string{"result"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Current number of connected navigation sync clients",
		}),
		navigationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navigation_events_total",
			Help: "Total navigation events relayed between clients",
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.respBytes,
		m.httpPanicTotal,
		m.buildInfo,
		m.ratelimitDeniedTotal,
		m.deckRendersTotal,
		m.wsClients,
		m.navigationTotal,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

// Registry returns the underlying registry
func (m *ServerMetrics) Registry() *prometheus.Registry {
	return m.reg
}

// set once at startup.
func (m *ServerMetrics) SetBuildInfo(app, version string) {
	m.buildInfo.With(prometheus.Labels{
		"app":        app,
		"version":    version,
		"go_version": runtime.Version(),
	}).Set(1)
}

func (m *ServerMetrics) IncHttpPanic() {
	m.httpPanicTotal.Inc()
}

func (m *ServerMetrics) IncRateLimitDenied() {
	m.ratelimitDeniedTotal.Inc()
}

// ObserveDeckRender counts a page render, labelled ok or error
func (m *ServerMetrics) ObserveDeckRender(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.deckRendersTotal.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) IncWebSocketClients() {
	m.wsClients.Inc()
}

func (m *ServerMetrics) DecWebSocketClients() {
	m.wsClients.Dec()
}

func (m *ServerMetrics) IncNavigation() {
	m.navigationTotal.Inc()
}
