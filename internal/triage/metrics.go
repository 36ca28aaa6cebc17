package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	TurnsTotal        *prometheus.CounterVec
	TurnDuration      *prometheus.HistogramVec
	StageDuration     *prometheus.HistogramVec
	GuardrailVerdicts *prometheus.CounterVec
	AlertsLoaded      prometheus.Histogram
}

// NewMetrics registers and returns triage metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_triage_turns_total",
			Help: "Total triage turns by outcome.",
		}, []string{"outcome"}),
		TurnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aegis_triage_turn_duration_seconds",
			Help:    "Duration of triage turns in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aegis_triage_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s .. ~64s
		}, []string{"stage"}),
		GuardrailVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_guardrail_verdicts_total",
			Help: "Guardrail outcomes: allowed, vetoed, or unreachable.",
		}, []string{"verdict"}),
		AlertsLoaded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_triage_alerts_loaded",
			Help:    "Alerts loaded per triage turn.",
			Buckets: prometheus.LinearBuckets(0, 1, 11), // 0 .. 10
		}),
	}

	reg.MustRegister(
		m.TurnsTotal,
		m.TurnDuration,
		m.StageDuration,
		m.GuardrailVerdicts,
		m.AlertsLoaded,
	)

	return m
}

// Hooks returns orchestrator hooks that feed these metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnStage: func(name string, seconds float64) {
			m.StageDuration.WithLabelValues(name).Observe(seconds)
		},
		OnGuardrail: func(verdict string) {
			m.GuardrailVerdicts.WithLabelValues(verdict).Inc()
		},
	}
}
