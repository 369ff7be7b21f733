// Package metrics exports process counters and the latest sampled values to Prometheus.
package metrics

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lixenwraith/fillmem/status"
)

const namespace = "fillmem"

// Command results
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultInterrupted = "interrupted"
	ResultUnknown     = "unknown"
)

// Metrics holds the collectors of one process on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	LogLines        *prometheus.CounterVec
	Lines           prometheus.Counter
	ArenaBytes      prometheus.Gauge
}

// New registers the process collectors and a collector over st
func New(st *status.Registry) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Commands dispatched, by verb and result",
			},
			[]string{"verb", "result"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command run time in seconds",
				Buckets:   []float64{.001, .01, .1, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"verb"},
		),
		LogLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_lines_total",
				Help:      "Operator log lines, by delivery path",
			},
			[]string{"path"},
		),
		Lines: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_submitted_total",
				Help:      "Lines submitted at the prompt",
			},
		),
		ArenaBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "arena_bytes",
				Help:      "Bytes held by grow",
			},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if st != nil {
		reg.MustRegister(newStatusCollector(st))
	}
	return m
}

// LogEmitted counts one operator log line delivered through path
func (m *Metrics) LogEmitted(path string) {
	m.LogLines.WithLabelValues(path).Inc()
}

// LineSubmitted counts one submitted line
func (m *Metrics) LineSubmitted() {
	m.Lines.Inc()
}

// CommandDone records one dispatched command
func (m *Metrics) CommandDone(verb, result string, elapsed time.Duration) {
	m.Commands.WithLabelValues(verb, result).Inc()
	if result != ResultUnknown {
		m.CommandDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
	}
}

// statusCollector exposes status floats and ints as gauges at scrape time
type statusCollector struct {
	st *status.Registry
}

func newStatusCollector(st *status.Registry) *statusCollector {
	return &statusCollector{st: st}
}

var metricName = strings.NewReplacer(".", "_", "-", "_")

func statusDesc(key string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "status", metricName.Replace(key)),
		"Latest value of "+key,
		nil, nil,
	)
}

// Describe sends nothing, making the collector unchecked; keys appear at runtime
func (c *statusCollector) Describe(chan<- *prometheus.Desc) {}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	c.st.Floats.Range(func(key string, v *status.AtomicFloat) {
		ch <- prometheus.MustNewConstMetric(statusDesc(key), prometheus.GaugeValue, v.Get())
	})
	c.st.Ints.Range(func(key string, v *atomic.Int64) {
		ch <- prometheus.MustNewConstMetric(statusDesc(key), prometheus.GaugeValue, float64(v.Load()))
	})
	c.st.Bools.Range(func(key string, v *atomic.Bool) {
		val := 0.0
		if v.Load() {
			val = 1
		}
		ch <- prometheus.MustNewConstMetric(statusDesc(key), prometheus.GaugeValue, val)
	})
}
