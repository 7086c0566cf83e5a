package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Run("counters increment", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		tr := NewTracker(reg)

		tr.IncReconnect()
		tr.IncReconnect()
		tr.IncReconnectExhausted()
		tr.IncRateLimitDenial()
		tr.IncDroppedFrame()

		assert.Equal(t, float64(2), testutil.ToFloat64(tr.reconnects))
		assert.Equal(t, float64(1), testutil.ToFloat64(tr.reconnectsFailed))
		assert.Equal(t, float64(1), testutil.ToFloat64(tr.rateLimitDenials))
		assert.Equal(t, float64(1), testutil.ToFloat64(tr.framesDropped))
	})

	t.Run("operations are labeled by outcome", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		tr := NewTracker(reg)

		tr.ObserveOperation("create_stream", 100*time.Millisecond, true)
		tr.ObserveOperation("create_stream", 50*time.Millisecond, false)

		count := testutil.CollectAndCount(tr.opDuration, "streampay_operation_duration_seconds")
		assert.Equal(t, 2, count, "one series per outcome")
	})

	t.Run("nil tracker records nothing", func(t *testing.T) {
		var tr *Tracker
		assert.NotPanics(t, func() {
			tr.ObserveOperation("noop", time.Second, true)
			tr.IncReconnect()
			tr.IncReconnectExhausted()
			tr.IncRateLimitDenial()
			tr.IncDroppedFrame()
		})
	})
}
