package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// metrics holds the server's Prometheus collectors. Each server owns its
// registry so several servers can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimitHits   prometheus.Counter
	sortToggles     *prometheus.CounterVec
	resizes         *prometheus.CounterVec
	selections      prometheus.Counter
	viewsLive       prometheus.Gauge
	viewsEvicted    *prometheus.CounterVec
	sourceLoads     *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itemlist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		rateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}),
		sortToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "table",
			Name:      "sort_toggles_total",
			Help:      "Header clicks by column and resulting direction",
		}, []string{"column", "direction"}),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "table",
			Name:      "resizes_total",
			Help:      "Width reports, split by whether the hidden column set changed",
		}, []string{"changed"}),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "table",
			Name:      "selections_total",
			Help:      "Rows selected",
		}),
		viewsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "itemlist",
			Subsystem: "views",
			Name:      "live",
			Help:      "Table views currently held in memory",
		}),
		viewsEvicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "views",
			Name:      "evicted_total",
			Help:      "Views dropped from memory",
		}, []string{"reason"}),
		sourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemlist",
			Subsystem: "source",
			Name:      "loads_total",
			Help:      "Item source loads by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestDuration,
		m.rateLimitHits,
		m.sortToggles,
		m.resizes,
		m.selections,
		m.viewsLive,
		m.viewsEvicted,
		m.sourceLoads,
	)
	return m
}

// handler serves the registry in the Prometheus exposition format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records request count and latency per chi route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		m.requestTotal.With(labels).Inc()
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

func (m *metrics) recordLoad(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.sourceLoads.WithLabelValues(outcome).Inc()
}

func (m *metrics) recordResize(changed bool) {
	m.resizes.WithLabelValues(strconv.FormatBool(changed)).Inc()
}
