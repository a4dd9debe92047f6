// Package metrics provides Prometheus HTTP request metrics for Gin servers.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

// HTTPMetrics holds the request collectors.
type HTTPMetrics struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	ActiveRequests prometheus.Gauge
}

// NewHTTPMetrics registers the collectors on reg with the given metric
// name prefix, e.g. "yophone_bot".
func NewHTTPMetrics(reg prometheus.Registerer, prefix string) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_http_active_requests",
			Help: "HTTP requests currently being served",
		}),
	}
}

// Middleware records every request. Routes are labelled by their registered
// pattern so path parameters do not explode label cardinality.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.ActiveRequests.Inc()
		defer m.ActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		m.Requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
