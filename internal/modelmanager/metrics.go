package modelmanager

import "github.com/prometheus/client_golang/prometheus"

// Metrics backs LLMStats's running totals with Prometheus counters so
// property P7 (successCount+errorCount=requestCount) is externally
// observable via /metrics, not just internally consistent in memory.
type Metrics struct {
	requests *prometheus.CounterVec
	successes *prometheus.CounterVec
	errors    *prometheus.CounterVec
	tokens    *prometheus.CounterVec
}

// NewMetrics registers the manager's counters against reg. Passing a fresh
// prometheus.NewRegistry() in tests avoids collisions with the global
// DefaultRegisterer across multiple Manager instances.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilot_model_requests_total",
			Help: "Total completion requests issued per endpoint.",
		}, []string{"endpoint"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilot_model_successes_total",
			Help: "Total successful completion requests per endpoint.",
		}, []string{"endpoint"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilot_model_errors_total",
			Help: "Total failed completion requests per endpoint.",
		}, []string{"endpoint"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilot_model_tokens_total",
			Help: "Total tokens consumed per endpoint.",
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.successes, m.errors, m.tokens)
	}
	return m
}

func (m *Metrics) recordSuccess(endpointID string, tokens int64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpointID).Inc()
	m.successes.WithLabelValues(endpointID).Inc()
	m.tokens.WithLabelValues(endpointID).Add(float64(tokens))
}

func (m *Metrics) recordError(endpointID string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpointID).Inc()
	m.errors.WithLabelValues(endpointID).Inc()
}
