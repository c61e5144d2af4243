// Package metrics exposes Prometheus collectors for HTTP traffic, imports and updates.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry so several instances can coexist in one process.
// A nil *Metrics records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requestDuration   *prometheus.HistogramVec
	importsTotal      *prometheus.CounterVec
	importedCompanies prometheus.Gauge
	updatesTotal      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "company_imports_total",
				Help: "Spreadsheet imports by outcome.",
			},
			[]string{"status"},
		),
		importedCompanies: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "company_imported_records",
				Help: "Number of company records written by the last successful import.",
			},
		),
		updatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "company_updates_total",
				Help: "Company rating/remark updates by outcome.",
			},
			[]string{"status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (m *Metrics) RecordImport(err error, companies int) {
	if m == nil {
		return
	}
	if err != nil {
		m.importsTotal.WithLabelValues("error").Inc()
		return
	}
	m.importsTotal.WithLabelValues("ok").Inc()
	m.importedCompanies.Set(float64(companies))
}

func (m *Metrics) RecordUpdate(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.updatesTotal.WithLabelValues(status).Inc()
}
