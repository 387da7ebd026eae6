// Package metrics records container activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inject"

// Collector implements container.Observer. It owns its registry so several
// containers (or tests) never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	scopesCreated  *prometheus.CounterVec
	instantiations *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		scopesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scopes_created_total",
				Help:      "Total number of container scopes created",
			},
			[]string{"scope"},
		),
		instantiations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_instantiations_total",
				Help:      "Total number of factory calls",
			},
			[]string{"service", "scope", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_instantiation_duration_seconds",
				Help:      "Factory call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),
	}
	c.registry.MustRegister(c.scopesCreated, c.instantiations, c.duration)
	return c
}

// ScopeCreated counts a new scope instance.
func (c *Collector) ScopeCreated(scope string) {
	c.scopesCreated.WithLabelValues(scope).Inc()
}

// ServiceInstantiated counts a factory call and observes its latency.
func (c *Collector) ServiceInstantiated(service, scope string, took time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.instantiations.WithLabelValues(service, scope, result).Inc()
	c.duration.WithLabelValues(service).Observe(took.Seconds())
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
