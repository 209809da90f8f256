// Package metrics exposes dispatch outcomes in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slashgw"

// Collector owns a private registry so tests and multiple servers never
// collide on the global default registry.
type Collector struct {
	registry     *prometheus.Registry
	interactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New creates a Collector. When runtime is true the Go and process
// collectors are registered too.
func New(runtime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Interactions dispatched, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent verifying, parsing and routing an interaction.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(c.interactions, c.duration)
	if runtime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// ObserveDispatch records one finished dispatch.
func (c *Collector) ObserveDispatch(outcome string, elapsed time.Duration) {
	c.interactions.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
