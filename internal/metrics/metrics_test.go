package metrics

import (
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/testutil"
    "github.com/stretchr/testify/assert"
)

func TestBookingMetrics_Counters(t *testing.T) {
    reg := prometheus.NewRegistry()
    m := NewBookingMetrics(reg)

    m.ObserveSubmission("AWAITING_PAYMENT_METHOD")
    m.ObserveSubmission("AWAITING_PAYMENT_METHOD")
    m.ObserveSettlement("yape", "ok")
    m.ObserveBackend("create_cita", "ok", 20*time.Millisecond)

    assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("AWAITING_PAYMENT_METHOD")))
    assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("yape", "ok")))
    assert.Equal(t, 1, testutil.CollectAndCount(m.backendLatency))
}

func TestBookingMetrics_NilSafe(t *testing.T) {
    var m *BookingMetrics
    m.ObserveSubmission("IDLE")
    m.ObserveSettlement("efectivo", "error")
    m.ObserveBackend("x", "error", time.Second)
}
