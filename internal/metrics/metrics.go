package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "burger"

// Metrics holds the application collectors on a private registry so tests
// can build as many instances as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	derivations    *prometheus.CounterVec
	quotes         prometheus.Counter
	unpricedAddOns *prometheus.CounterVec
	liveViews      prometheus.Gauge
	flagRefreshes  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),

		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "derivations_total",
			Help:      "Catalog derivations by resulting view status.",
		}, []string{"status"}),
		quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "quotes_total",
			Help:      "Total number of price quotes computed.",
		}),
		unpricedAddOns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "unpriced_addons_total",
			Help:      "Selected add-ons that had no price entry and were priced at zero.",
		}, []string{"kind"}),
		liveViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "live_views",
			Help:      "Open live catalog view connections.",
		}),
		flagRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flags",
			Name:      "refreshes_total",
			Help:      "Feature flag fetch-and-activate runs.",
		}, []string{"success"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.derivations,
		m.quotes,
		m.unpricedAddOns,
		m.liveViews,
		m.flagRefreshes,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// The recorders below are no-ops on a nil receiver so services can run
// without metrics in tests.

func (m *Metrics) RecordDerivation(status string) {
	if m == nil {
		return
	}
	m.derivations.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordQuote(unpriced map[string]int) {
	if m == nil {
		return
	}
	m.quotes.Inc()
	for kind, n := range unpriced {
		m.unpricedAddOns.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) LiveViewOpened() {
	if m == nil {
		return
	}
	m.liveViews.Inc()
}

func (m *Metrics) LiveViewClosed() {
	if m == nil {
		return
	}
	m.liveViews.Dec()
}

func (m *Metrics) RecordFlagRefresh(success bool) {
	if m == nil {
		return
	}
	m.flagRefreshes.WithLabelValues(strconv.FormatBool(success)).Inc()
}
