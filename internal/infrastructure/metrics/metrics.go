// Package metrics exposes Prometheus counters for lifecycle transitions,
// rejected commands and HTTP latency.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several instances can live in one
// process (tests) without duplicate registration.
type Collector struct {
	registry *prometheus.Registry

	transitions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates the collector and registers its metrics
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_transitions_total",
				Help:      "Lifecycle transitions by aggregate and event type",
			},
			[]string{"aggregate", "event_type"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_commands_total",
				Help:      "Commands rejected by error code",
			},
			[]string{"code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	c.registry.MustRegister(
		c.transitions,
		c.rejections,
		c.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handle counts one transition per domain event
func (c *Collector) Handle(ctx context.Context, event shared.DomainEvent) error {
	c.transitions.WithLabelValues(event.AggregateType(), event.EventType()).Inc()
	return nil
}

// EventTypes returns nil: the collector listens to every event
func (c *Collector) EventTypes() []string {
	return nil
}

// RecordRejection counts a command refused with the given error code
func (c *Collector) RecordRejection(code string) {
	c.rejections.WithLabelValues(code).Inc()
}

// GinMiddleware observes request latency and counts responses carrying an
// error code set by the handlers
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.requestDuration.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())

		if code := ctx.GetString(logger.GinErrorCodeKey); code != "" {
			c.RecordRejection(code)
		}
	}
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

var _ shared.EventHandler = (*Collector)(nil)
