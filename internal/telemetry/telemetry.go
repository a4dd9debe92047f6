// Package telemetry exports Prometheus metrics for the bot service.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics holds the bot's Prometheus collectors. It implements both
// yophone.Recorder and bot.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	// API client metrics
	APIRequests *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec

	// Update flow metrics
	Received      *prometheus.CounterVec
	Dispatched    *prometheus.CounterVec
	Rejected      prometheus.Counter
	HandlerErrors prometheus.Counter
}

// New registers the collectors on reg. A nil reg gets a fresh registry with
// the Go and process collectors added.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{registry: reg}
	factory := promauto.With(reg)
	initAPIMetrics(m, factory)
	initUpdateMetrics(m, factory)
	return m
}

func initAPIMetrics(m *Metrics, factory promauto.Factory) {
	m.APIRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "yophone_api_requests_total",
		Help: "Total YoPhone Bot API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.APIDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yophone_api_request_duration_seconds",
		Help:    "YoPhone Bot API call latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"endpoint"})
}

func initUpdateMetrics(m *Metrics, factory promauto.Factory) {
	m.Received = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "yophone_updates_received_total",
		Help: "Updates received by source (poll, webhook)",
	}, []string{"source"})

	m.Dispatched = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "yophone_updates_dispatched_total",
		Help: "Updates dispatched by route (command, message, unhandled)",
	}, []string{"route"})

	m.Rejected = factory.NewCounter(prometheus.CounterOpts{
		Name: "yophone_updates_rejected_total",
		Help: "Updates from getUpdates that could not be decoded",
	})

	m.HandlerErrors = factory.NewCounter(prometheus.CounterOpts{
		Name: "yophone_handler_errors_total",
		Help: "Handler invocations that returned an error or panicked",
	})
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one API call.
func (m *Metrics) ObserveRequest(endpoint string, duration time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	m.APIRequests.WithLabelValues(endpoint, outcome).Inc()
	m.APIDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// UpdateRejected counts one update that could not be decoded.
func (m *Metrics) UpdateRejected() {
	m.Rejected.Inc()
}

// UpdatesReceived counts updates arriving from source.
func (m *Metrics) UpdatesReceived(source string, count int) {
	m.Received.WithLabelValues(source).Add(float64(count))
}

// UpdateDispatched counts one dispatched update.
func (m *Metrics) UpdateDispatched(route string) {
	m.Dispatched.WithLabelValues(route).Inc()
}

// HandlerFailed counts one failed handler.
func (m *Metrics) HandlerFailed() {
	m.HandlerErrors.Inc()
}
