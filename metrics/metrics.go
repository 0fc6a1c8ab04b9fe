// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/voucher-manager/middleware"
)

// Metrics owns a private registry so tests can create as many as they
// like without clashing on the global one.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	importedRows *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vouchers_http_requests_total",
				Help: "HTTP requests by route pattern and status code",
			},
			[]string{"route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vouchers_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vouchers_transitions_total",
				Help: "Status transition attempts by target status and result code",
			},
			[]string{"target", "result"},
		),
		importedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vouchers_import_rows_total",
				Help: "CSV import rows by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.transitions,
		m.importedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency for one route pattern
func (m *Metrics) Middleware(route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := middleware.NewStatusRecorder(w)
			next(rec, r)
			m.requests.WithLabelValues(route, strconv.Itoa(rec.Status)).Inc()
			m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	}
}

// Transition counts one transition attempt. result is "OK" or an error code.
func (m *Metrics) Transition(target, result string) {
	m.transitions.WithLabelValues(target, result).Inc()
}

// Imported counts the outcome of an import
func (m *Metrics) Imported(inserted, skipped int) {
	m.importedRows.WithLabelValues("inserted").Add(float64(inserted))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}
