package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of checkout attempts.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	committed prometheus.Counter
	aborted   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_committed_total",
		Help: "Committed checkout transactions.",
	})
	aborted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_aborted_total",
		Help: "Aborted checkout transactions by reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, committed, aborted)
	return &CheckoutMetrics{
		duration:  duration,
		committed: committed,
		aborted:   aborted,
	}
}

// ObserveDuration records the duration for the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCommitted increments the committed counter.
func (c *CheckoutMetrics) IncCommitted() {
	if c == nil || c.committed == nil {
		return
	}
	c.committed.Inc()
}

// IncAborted increments the aborted counter for the named reason.
func (c *CheckoutMetrics) IncAborted(reason string) {
	if c == nil || c.aborted == nil {
		return
	}
	c.aborted.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
