package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracker records client-side performance and health metrics. It is an
// explicitly constructed instance: callers own its lifecycle and pass it to
// the components that should report through it. A nil *Tracker is valid and
// records nothing, so instrumentation stays optional.
type Tracker struct {
	opDuration       *prometheus.HistogramVec
	reconnects       prometheus.Counter
	reconnectsFailed prometheus.Counter
	rateLimitDenials prometheus.Counter
	framesDropped    prometheus.Counter
}

// NewTracker registers the SDK metrics against the given registerer.
func NewTracker(reg prometheus.Registerer) *Tracker {
	factory := promauto.With(reg)
	return &Tracker{
		opDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "streampay",
				Name:      "operation_duration_seconds",
				Help:      "Duration of wrapped client operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "streampay",
			Name:      "relay_reconnect_attempts_total",
			Help:      "Relay channel reconnection attempts",
		}),
		reconnectsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "streampay",
			Name:      "relay_reconnect_exhausted_total",
			Help:      "Times the relay channel gave up reconnecting",
		}),
		rateLimitDenials: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "streampay",
			Name:      "rate_limit_denials_total",
			Help:      "Actions denied by local admission control",
		}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "streampay",
			Name:      "relay_frames_dropped_total",
			Help:      "Inbound relay frames dropped as malformed",
		}),
	}
}

// ObserveOperation records one wrapped-operation execution.
func (t *Tracker) ObserveOperation(name string, d time.Duration, success bool) {
	if t == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	t.opDuration.WithLabelValues(name, outcome).Observe(d.Seconds())
}

// IncReconnect records one relay reconnection attempt.
func (t *Tracker) IncReconnect() {
	if t == nil {
		return
	}
	t.reconnects.Inc()
}

// IncReconnectExhausted records the relay channel giving up.
func (t *Tracker) IncReconnectExhausted() {
	if t == nil {
		return
	}
	t.reconnectsFailed.Inc()
}

// IncRateLimitDenial records one admission-control denial.
func (t *Tracker) IncRateLimitDenial() {
	if t == nil {
		return
	}
	t.rateLimitDenials.Inc()
}

// IncDroppedFrame records one malformed inbound relay frame.
func (t *Tracker) IncDroppedFrame() {
	if t == nil {
		return
	}
	t.framesDropped.Inc()
}
