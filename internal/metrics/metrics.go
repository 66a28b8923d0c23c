package metrics

import (
	"net/http"
	"strconv"
	"time"

	"roastlog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventsIngested  *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	liveStreams     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roastlog_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roastlog_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roastlog_events_ingested_total",
			Help: "Roast events admitted to a log, by kind.",
		}, []string{"kind"}),
		eventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roastlog_events_rejected_total",
			Help: "Roast events refused at ingestion, by offending field.",
		}, []string{"field"}),
		liveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roastlog_live_streams",
			Help: "Open live roast websocket streams.",
		}),
	}
	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.eventsIngested,
		m.eventsRejected,
		m.liveStreams,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware counts requests by matched route template, not raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestCount.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) EventIngested(kind models.EventKind) {
	if m == nil {
		return
	}
	m.eventsIngested.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) EventRejected(field string) {
	if m == nil {
		return
	}
	m.eventsRejected.WithLabelValues(field).Inc()
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.liveStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.liveStreams.Dec()
}
