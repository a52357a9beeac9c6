package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the call pipeline. All methods
// are nil-safe so components can run without metrics in tests.
type Metrics struct {
	callsDispatched  prometheus.Counter
	dispatchFailures prometheus.Counter
	dialogueTurns    prometheus.Counter
	llmFailures      prometheus.Counter
	sweepDuration    prometheus.Histogram
	activeSessions   prometheus.Gauge
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		callsDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outreach_calls_dispatched_total",
			Help: "Calls successfully handed off to the telephony provider.",
		}),
		dispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outreach_call_dispatch_failures_total",
			Help: "Call dispatches rejected by the telephony provider.",
		}),
		dialogueTurns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outreach_dialogue_turns_total",
			Help: "Dialogue turns processed across all calls.",
		}),
		llmFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "outreach_llm_failures_total",
			Help: "Completion-service errors absorbed by the fallback reply.",
		}),
		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "outreach_sweep_duration_seconds",
			Help:    "Duration of scheduler sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
		activeSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "outreach_active_sessions",
			Help: "Live in-memory conversation sessions.",
		}),
	}
}

func (m *Metrics) CallDispatched() {
	if m == nil {
		return
	}
	m.callsDispatched.Inc()
}

func (m *Metrics) DispatchFailed() {
	if m == nil {
		return
	}
	m.dispatchFailures.Inc()
}

func (m *Metrics) DialogueTurn() {
	if m == nil {
		return
	}
	m.dialogueTurns.Inc()
}

func (m *Metrics) LLMFailure() {
	if m == nil {
		return
	}
	m.llmFailures.Inc()
}

func (m *Metrics) ObserveSweep(seconds float64) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(seconds)
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
