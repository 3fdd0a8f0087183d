package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for conversation turns.
type ConversationMetrics struct {
	turnsTotal       *prometheus.CounterVec
	stageTransitions *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bianca",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"stage", "status"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bianca",
			Subsystem: "conversation",
			Name:      "stage_transitions_total",
			Help:      "Total stage transitions",
		}, []string{"from", "to"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bianca",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.stageTransitions, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(stage, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status).Inc()
}

func (m *ConversationMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(from, to).Inc()
}

func (m *ConversationMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}
