package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records state-engine activity: mutations applied to the
// cart/wishlist engines, session phase transitions, and order poll cycles.
type EngineMetrics struct {
	mutations   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	pollCycles  *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_mutations_total",
		Help: "State mutations applied, by engine and operation.",
	}, []string{"engine", "op"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_transitions_total",
		Help: "Session phase transitions, by target phase.",
	}, []string{"phase"})
	pollCycles := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_poll_duration_seconds",
		Help:    "Duration of order status poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(mutations, transitions, pollCycles)
	return &EngineMetrics{
		mutations:   mutations,
		transitions: transitions,
		pollCycles:  pollCycles,
	}
}

// IncMutation counts one applied mutation for the named engine/operation.
func (e *EngineMetrics) IncMutation(engine, op string) {
	if e == nil || e.mutations == nil {
		return
	}
	e.mutations.WithLabelValues(normalizeLabel(engine), normalizeLabel(op)).Inc()
}

// IncTransition counts one session transition into the named phase.
func (e *EngineMetrics) IncTransition(phase string) {
	if e == nil || e.transitions == nil {
		return
	}
	e.transitions.WithLabelValues(normalizeLabel(phase)).Inc()
}

// ObservePoll records the duration of one order status poll cycle.
func (e *EngineMetrics) ObservePoll(outcome string, duration time.Duration) {
	if e == nil || e.pollCycles == nil {
		return
	}
	e.pollCycles.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
