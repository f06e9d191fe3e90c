// Package metrics exposes Prometheus counters and histograms for the
// booking flow.  A nil *BookingMetrics is valid and records nothing.
package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics groups the collectors updated by the booking components.
type BookingMetrics struct {
    submissions    *prometheus.CounterVec
    settlements    *prometheus.CounterVec
    backendLatency *prometheus.HistogramVec
}

// NewBookingMetrics creates the collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil).
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
    m := &BookingMetrics{
        submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "spa",
            Subsystem: "booking",
            Name:      "submissions_total",
            Help:      "Appointment submissions by resulting state",
        }, []string{"state"}),
        settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "spa",
            Subsystem: "booking",
            Name:      "settlements_total",
            Help:      "Settlement calls by payment method and outcome",
        }, []string{"method", "outcome"}),
        backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
            Namespace: "spa",
            Subsystem: "backend",
            Name:      "request_duration_seconds",
            Help:      "Latency of spa backend REST calls",
            Buckets:   prometheus.DefBuckets,
        }, []string{"operation", "status"}),
    }
    if reg == nil {
        reg = prometheus.DefaultRegisterer
    }
    reg.MustRegister(m.submissions, m.settlements, m.backendLatency)
    return m
}

func (m *BookingMetrics) ObserveSubmission(state string) {
    if m == nil {
        return
    }
    m.submissions.WithLabelValues(state).Inc()
}

func (m *BookingMetrics) ObserveSettlement(method, outcome string) {
    if m == nil {
        return
    }
    m.settlements.WithLabelValues(method, outcome).Inc()
}

// ObserveBackend records one backend call.  status is "ok" or "error".
func (m *BookingMetrics) ObserveBackend(operation, status string, elapsed time.Duration) {
    if m == nil {
        return
    }
    m.backendLatency.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}
