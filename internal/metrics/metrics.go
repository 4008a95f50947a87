// Package metrics exposes the service's prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds application-level instruments.
type Metrics struct {
	SubmitsTotal        prometheus.Counter
	SubmitFailuresTotal prometheus.Counter
	SectionSavesTotal   *prometheus.CounterVec
	SessionsOpenedTotal prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Module provides the instruments on the default registry.
var Module = fx.Module("metrics",
	fx.Provide(func() *Metrics {
		return New(prometheus.DefaultRegisterer)
	}),
)

// New registers the instruments with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "milltrack_production_submits_total",
			Help: "Production days submitted successfully.",
		}),
		SubmitFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "milltrack_production_submit_failures_total",
			Help: "Submit attempts rejected by preconditions, validation or persistence.",
		}),
		SectionSavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milltrack_section_saves_total",
			Help: "Section save commits, per mill section.",
		}, []string{"section"}),
		SessionsOpenedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "milltrack_entry_sessions_opened_total",
			Help: "Production entry sessions opened.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milltrack_http_requests_total",
			Help: "HTTP requests, per route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "milltrack_http_request_duration_seconds",
			Help:    "HTTP request latency, per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
