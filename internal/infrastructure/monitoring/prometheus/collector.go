// Package prometheus wraps the Prometheus client behind small interfaces and
// defines the application metric set.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers metrics on an isolated registry.  Each process builds
// one Collector; tests build their own so registrations never collide.
type Collector struct {
	registry *prometheus.Registry
}

// NewCollector builds a Collector with the standard Go and process
// collectors pre-registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Collector{registry: reg}
}

// NewBareCollector builds a Collector without the runtime collectors.
// Intended for tests.
func NewBareCollector() *Collector {
	return &Collector{registry: prometheus.NewRegistry()}
}

// RegisterCounter registers and returns a labeled counter.
func (c *Collector) RegisterCounter(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	c.registry.MustRegister(vec)
	return vec
}

// RegisterGauge registers and returns a labeled gauge.
func (c *Collector) RegisterGauge(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	c.registry.MustRegister(vec)
	return vec
}

// RegisterHistogram registers and returns a labeled histogram.
func (c *Collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	c.registry.MustRegister(vec)
	return vec
}

// Handler returns the /metrics HTTP handler for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Gather exposes the registry for test assertions.
func (c *Collector) Gather() prometheus.Gatherer {
	return c.registry
}
