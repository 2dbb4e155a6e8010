package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus collectors exported by the service.
type Metrics struct {
	registry     *prometheus.Registry
	evaluations  *prometheus.CounterVec
	bestOptions  *prometheus.CounterVec
	priceSyncs   *prometheus.CounterVec
	httpRequests *prometheus.HistogramVec
}

// New registers every collector on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriplanner_evaluations_total",
			Help: "Harvest evaluations by crop and outcome.",
		}, []string{"crop", "outcome"}),
		bestOptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriplanner_best_option_total",
			Help: "Recommended scenario per evaluation.",
		}, []string{"market", "timing"}),
		priceSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriplanner_price_sync_total",
			Help: "Price sheet synchronisations by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agriplanner_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.evaluations,
		m.bestOptions,
		m.priceSyncs,
		m.httpRequests,
	)

	return m
}

// ObserveEvaluation counts one evaluation attempt. An empty market means it failed.
func (m *Metrics) ObserveEvaluation(crop, outcome, market, timing string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(crop, outcome).Inc()
	if market != "" {
		m.bestOptions.WithLabelValues(market, timing).Inc()
	}
}

// ObservePriceSync counts one sync run.
func (m *Metrics) ObservePriceSync(result string) {
	if m == nil {
		return
	}
	m.priceSyncs.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
