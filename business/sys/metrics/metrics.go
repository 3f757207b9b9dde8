// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meshledger"

// Metrics represents the set of metrics we gather. Each value owns its
// registry so several can exist in the same process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	errors   prometheus.Counter
	panics   prometheus.Counter
}

// New constructs the metrics and registers the runtime collectors.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Number of requests handled by status code.",
			},
			[]string{"method", "code"},
		),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Number of requests that returned an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Number of handler panics recovered.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.errors,
		m.panics,
	)

	return &m
}

// Register adds more collectors to the registry.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the handler exposing the metrics in the prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddRequest counts a handled request.
func (m *Metrics) AddRequest(method string, statusCode int) {
	m.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// AddError counts a request that failed.
func (m *Metrics) AddError() {
	m.errors.Inc()
}

// AddPanic counts a recovered panic.
func (m *Metrics) AddPanic() {
	m.panics.Inc()
}
