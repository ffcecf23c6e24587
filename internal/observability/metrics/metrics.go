package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the intake API and its
// upstream model calls.
type IntakeMetrics struct {
	requestsTotal  *prometheus.CounterVec
	llmLatency     *prometheus.HistogramVec
	llmTokensTotal *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medimirror",
			Subsystem: "intake",
			Name:      "requests_total",
			Help:      "Total intake API requests",
		}, []string{"route", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medimirror",
			Subsystem: "intake",
			Name:      "llm_latency_seconds",
			Help:      "Latency of upstream model completions",
			// Sub-10s buckets plus a few higher ones for slow diagnosis calls.
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
		}, []string{"model", "purpose", "status"}),
		llmTokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medimirror",
			Subsystem: "intake",
			Name:      "llm_tokens_total",
			Help:      "Tokens used by the upstream model",
		}, []string{"model", "type"}), // type: input, output, total
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.llmLatency, m.llmTokensTotal)
	return m
}

func (m *IntakeMetrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

func (m *IntakeMetrics) ObserveLLMCall(model, purpose, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(model, purpose, status).Observe(seconds)
}

func (m *IntakeMetrics) ObserveTokens(model string, input, output, total int) {
	if m == nil {
		return
	}
	if input > 0 {
		m.llmTokensTotal.WithLabelValues(model, "input").Add(float64(input))
	}
	if output > 0 {
		m.llmTokensTotal.WithLabelValues(model, "output").Add(float64(output))
	}
	if total > 0 {
		m.llmTokensTotal.WithLabelValues(model, "total").Add(float64(total))
	}
}
