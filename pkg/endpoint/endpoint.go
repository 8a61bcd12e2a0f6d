// Package endpoint holds the wire-level LLMEndpoint and LLMStats types the
// model manager selects between and keeps health/usage accounting for,
// generalized from the teacher's per-provider FailoverMetrics
// (internal/agent/failover.go) to per-endpoint state carrying priority,
// weight, and health alongside the running counters.
package endpoint

import "time"

// HealthStatus classifies an Endpoint's availability, mirroring the
// teacher's ProviderState.CircuitOpen boolean but expanded into the
// three-state machine spec.md section 4.4 describes (healthy, degraded,
// unavailable): an endpoint with fewer than the failure threshold of
// consecutive failures is degraded but still selectable. There is no timer;
// the model manager re-admits an unavailable endpoint lazily once its
// health-check window has passed.
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthDegraded    HealthStatus = "degraded"
	HealthUnavailable HealthStatus = "unavailable"
)

// Health tracks one Endpoint's circuit-breaker state.
type Health struct {
	Status       HealthStatus  `json:"status"`
	LastCheck    time.Time     `json:"last_check"`
	ResponseTime time.Duration `json:"response_time"`
	ErrorCount   int           `json:"error_count"`
}

// Endpoint is one configured LLM backend the model manager can select.
type Endpoint struct {
	ID       string `json:"id"`
	Provider string `json:"provider"` // openai | anthropic | google
	APIKey   string `json:"-"`
	BaseURL  string `json:"base_url,omitempty"`
	Model    string `json:"model"`
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Enabled  bool   `json:"enabled"`
	Health   Health `json:"health"`
}

// Stats accumulates per-endpoint request accounting (LLMStats), generalized
// from FailoverMetrics's global counters to one instance per Endpoint.
type Stats struct {
	RequestCount        int64         `json:"request_count"`
	SuccessCount        int64         `json:"success_count"`
	ErrorCount          int64         `json:"error_count"`
	TotalResponseTime   time.Duration `json:"total_response_time"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	LastUsed            time.Time     `json:"last_used"`
	TokensUsed          int64         `json:"tokens_used"`
}

// RecordSuccess folds one successful call's duration and token usage into
// Stats, keeping AverageResponseTime consistent with the running total.
// This is what guarantees property P7 (successCount+errorCount=requestCount)
// holds after every call.
func (s *Stats) RecordSuccess(d time.Duration, tokens int64, at time.Time) {
	s.RequestCount++
	s.SuccessCount++
	s.TotalResponseTime += d
	s.AverageResponseTime = s.TotalResponseTime / time.Duration(s.RequestCount)
	s.TokensUsed += tokens
	s.LastUsed = at
}

// RecordError folds one failed call into Stats.
func (s *Stats) RecordError(d time.Duration, at time.Time) {
	s.RequestCount++
	s.ErrorCount++
	s.TotalResponseTime += d
	s.AverageResponseTime = s.TotalResponseTime / time.Duration(s.RequestCount)
	s.LastUsed = at
}
