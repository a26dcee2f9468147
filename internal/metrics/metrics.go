// Package metrics counts contract checks with Prometheus collectors. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "dbc"

// Check names used as the "check" label.
const (
	CheckSignature = "signature"
	CheckArgs      = "args"
	CheckReturn    = "return"
	CheckComplete  = "complete"
)

// Result label values.
const (
	ResultOK        = "ok"
	ResultViolation = "violation"
	ResultError     = "error"
)

// Collector holds the contract-checking metric vectors on a private
// registry.
type Collector struct {
	registry *prometheus.Registry

	Checks       *prometheus.CounterVec
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
}

// New creates a Collector whose metrics are prefixed with namespace.
func New(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_checks_total",
			Help:      "Contract checks by implementation, operation, check and result",
		}, []string{"implementation", "operation", "check", "result"}),
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checked_calls_total",
			Help:      "Calls through checking wrappers by result",
		}, []string{"implementation", "operation", "result"}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checked_call_duration_seconds",
			Help:      "Duration of calls through checking wrappers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"implementation", "operation"}),
	}
	reg.MustRegister(c.Checks, c.Calls, c.CallDuration)
	return c
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordCheck counts one check; err nil means the check passed.
func (c *Collector) RecordCheck(impl, op, check string, err error) {
	if c == nil {
		return
	}
	c.Checks.WithLabelValues(impl, op, check, result(err, true)).Inc()
}

// RecordCall counts one wrapped call and its duration. violation reports
// whether err came from a contract check rather than from the body.
func (c *Collector) RecordCall(impl, op string, d time.Duration, err error, violation bool) {
	if c == nil {
		return
	}
	c.Calls.WithLabelValues(impl, op, result(err, violation)).Inc()
	c.CallDuration.WithLabelValues(impl, op).Observe(d.Seconds())
}

func result(err error, violation bool) string {
	switch {
	case err == nil:
		return ResultOK
	case violation:
		return ResultViolation
	default:
		return ResultError
	}
}

// Handler returns an HTTP handler that serves the metrics. A nil Collector
// serves an empty registry.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteSummary writes one line per counter series, sorted by name and
// labels. Histograms are reported by sample count.
func (c *Collector) WriteSummary(w io.Writer) error {
	if c == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s{%s} %s", mf.GetName(), labels(m), value(mf.GetType(), m)))
		}
	}
	slices.Sort(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return strings.Join(parts, ",")
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_HISTOGRAM:
		return fmt.Sprintf("count=%d", m.GetHistogram().GetSampleCount())
	default:
		return "?"
	}
}
