package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	importedRows    *prometheus.CounterVec
	edits           *prometheus.CounterVec
	ordersLoaded    prometheus.Gauge
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderdesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	imported := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_import_rows_total",
		Help: "Rows seen by the importer by source and outcome.",
	}, []string{"source", "outcome"})
	edits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_edits_total",
		Help: "Reconciled edits by kind.",
	}, []string{"kind"})
	loaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orderdesk_orders",
		Help: "Orders currently held in the collection.",
	})
	registry.MustRegister(requests, duration, imported, edits, loaded)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		importedRows:    imported,
		edits:           edits,
		ordersLoaded:    loaded,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveImport counts accepted and skipped rows for one import.
func (m *Metrics) ObserveImport(source string, accepted, skipped int) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.importedRows.WithLabelValues(source, "accepted").Add(float64(accepted))
	m.importedRows.WithLabelValues(source, "skipped").Add(float64(skipped))
}

// ObserveEdit counts one reconciled edit.
func (m *Metrics) ObserveEdit(kind string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(kind).Inc()
}

// SetOrders records the collection size.
func (m *Metrics) SetOrders(n int) {
	if m == nil {
		return
	}
	m.ordersLoaded.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
