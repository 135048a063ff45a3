package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the planning engine.
type Metrics struct {
	registry         *prometheus.Registry
	Turns            *prometheus.CounterVec
	TurnDuration     *prometheus.HistogramVec
	ProviderAttempts *prometheus.CounterVec
	DroppedSteps     prometheus.Counter
	Steps            *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
}

// NewMetrics constructs a metrics registry with engine collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "embodied_turns_total",
		Help: "Conversation turns by outcome",
	}, []string{"outcome"})

	turnDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "embodied_turn_duration_seconds",
		Help:    "End-to-end turn duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "embodied_provider_attempts_total",
		Help: "LLM provider attempts by modality, provider, and outcome",
	}, []string{"modality", "provider", "outcome"})

	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "embodied_dropped_steps_total",
		Help: "Plan steps rejected during validation",
	})

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "embodied_steps_total",
		Help: "Executed capability steps by name and outcome",
	}, []string{"capability", "outcome"})

	stepDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "embodied_step_duration_seconds",
		Help:    "Capability step duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"capability"})

	reg.MustRegister(turns, turnDur, attempts, dropped, steps, stepDur)

	return &Metrics{
		registry:         reg,
		Turns:            turns,
		TurnDuration:     turnDur,
		ProviderAttempts: attempts,
		DroppedSteps:     dropped,
		Steps:            steps,
		StepDuration:     stepDur,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTurn records one conversation turn.
func (m *Metrics) RecordTurn(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.Turns.WithLabelValues(outcome).Inc()
	m.TurnDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordDroppedSteps counts steps rejected by plan validation.
func (m *Metrics) RecordDroppedSteps(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.DroppedSteps.Add(float64(count))
}

// RecordProviderAttempt records one provider invocation in a fallback chain.
func (m *Metrics) RecordProviderAttempt(modality, provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderAttempts.WithLabelValues(modality, provider, outcome).Inc()
}

// RecordStep records one executed capability step.
func (m *Metrics) RecordStep(capability, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Steps.WithLabelValues(capability, outcome).Inc()
	m.StepDuration.WithLabelValues(capability).Observe(duration.Seconds())
}
