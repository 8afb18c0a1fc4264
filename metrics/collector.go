package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/isdmx/acms/executor"
)

const (
	namespace = "acms"
	subsystem = "executor"
)

// Collector records executor activity as Prometheus metrics
type Collector struct {
	commands  *prometheus.CounterVec
	duration  prometheus.Histogram
	active    prometheus.Gauge
	available prometheus.Gauge
}

var _ executor.Observer = (*Collector)(nil)

// NewRegistry creates a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// New creates a Collector and registers its metrics on registerer
func New(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Total executor calls by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Wall-clock duration of spawned commands in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
			},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_processes",
				Help:      "External processes currently running.",
			},
		),
		available: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "available_slots",
				Help:      "Free admission slots.",
			},
		),
	}

	for _, collector := range []prometheus.Collector{c.commands, c.duration, c.active, c.available} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register executor metrics: %w", err)
		}
	}

	return c, nil
}

// CommandCompleted counts the call and records its duration. Calls rejected
// before a process was spawned are counted but not timed.
func (c *Collector) CommandCompleted(outcome executor.Outcome, elapsed time.Duration) {
	c.commands.WithLabelValues(string(outcome)).Inc()
	if elapsed > 0 {
		c.duration.Observe(elapsed.Seconds())
	}
}

// ProcessesChanged updates the occupancy gauges
func (c *Collector) ProcessesChanged(active, available int) {
	c.active.Set(float64(active))
	c.available.Set(float64(available))
}
