// Package modelmanager implements the Model Endpoint Manager: endpoint
// selection across the five strategies in spec.md section 4.4, health
// accounting, and retry/failover. Grounded on the teacher's
// FailoverOrchestrator (internal/agent/failover.go) for the circuit-breaker
// and exponential-backoff shape, generalized from "ordered provider
// fallback" to strategy-ranked candidate lists, and on routing.Router
// (internal/agent/routing/router.go) for the candidate-list-with-fallback
// pattern.
package modelmanager

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wrenlab/pilot/internal/modelclient"
	"github.com/wrenlab/pilot/pkg/endpoint"
)

// Config configures a Manager, matching spec.md section 6's Model
// configuration surface.
type Config struct {
	Strategy          Strategy
	Temperature       float64
	MaxTokens         int // -1 = unbounded, per spec.md section 6
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration
	FailureThreshold  int           // consecutive failures before marking unavailable
	RecoveryThreshold int           // not consulted: a single success marks an endpoint healthy
	HealthCheckWindow time.Duration // how long an unavailable endpoint stays excluded

	// DisableHealthCheck, EnableFallbackMode, AlwaysRetryAll mirror spec.md
	// section 4.4's request-lifecycle user controls.
	DisableHealthCheck bool
	EnableFallbackMode bool
	AlwaysRetryAll     bool
}

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyPriority
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 2
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 3
	}
	if c.RecoveryThreshold == 0 {
		c.RecoveryThreshold = 1
	}
	if c.HealthCheckWindow == 0 {
		c.HealthCheckWindow = 30 * time.Second
	}
	return c
}

// registration bundles one configured endpoint with its client and
// per-endpoint state.
type registration struct {
	ep     *endpoint.Endpoint
	client modelclient.Client
	stats  *endpoint.Stats
}

// Manager exclusively owns every Endpoint and Stats it is constructed with,
// per spec.md section 3's ownership rule: no other component mutates
// endpoint health or stats directly.
type Manager struct {
	cfg     Config
	metrics *Metrics

	mu            sync.RWMutex
	registrations []*registration
	byID          map[string]*registration
	rrCounter     uint64
}

// New builds a Manager over the given endpoint/client pairs.
func New(cfg Config, metrics *Metrics, pairs map[*endpoint.Endpoint]modelclient.Client) *Manager {
	m := &Manager{
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		byID:    make(map[string]*registration),
	}
	for ep, client := range pairs {
		reg := &registration{ep: ep, client: client, stats: &endpoint.Stats{}}
		m.registrations = append(m.registrations, reg)
		m.byID[ep.ID] = reg
	}
	return m
}

// Stats returns a snapshot of the running totals for endpointID.
func (m *Manager) Stats(endpointID string) (endpoint.Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.byID[endpointID]
	if !ok {
		return endpoint.Stats{}, false
	}
	return *reg.stats, true
}

// Health returns a snapshot of endpointID's current health.
func (m *Manager) Health(endpointID string) (endpoint.Health, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.byID[endpointID]
	if !ok {
		return endpoint.Health{}, false
	}
	return reg.ep.Health, true
}

func (m *Manager) available(reg *registration) bool {
	if m.cfg.DisableHealthCheck {
		return true
	}
	h := reg.ep.Health
	if h.Status != endpoint.HealthUnavailable {
		return true
	}
	return time.Since(h.LastCheck) > m.cfg.HealthCheckWindow
}

// Complete selects a candidate endpoint ordering per m.cfg.Strategy, and
// tries each in turn with per-endpoint retry/backoff, failing over to the
// next candidate when the error class warrants it, per spec.md section 4.4.
// Two user controls change this: EnableFallbackMode tries every endpoint
// regardless of health, in declaration order (approximated here by
// Priority, since that is what a configured endpoint list declares its
// order with); AlwaysRetryAll bypasses MaxRetries (one attempt per
// endpoint) and keeps iterating every available endpoint once before
// giving up, regardless of the error's failover classification.
func (m *Manager) Complete(ctx context.Context, req modelclient.Request) (modelclient.Response, string, error) {
	m.mu.RLock()
	statsSnapshot := make(map[string]endpoint.Stats, len(m.registrations))
	candidates := make([]*endpoint.Endpoint, 0, len(m.registrations))
	for _, reg := range m.registrations {
		statsSnapshot[reg.ep.ID] = *reg.stats
		if m.cfg.EnableFallbackMode || m.available(reg) {
			candidates = append(candidates, reg.ep)
		}
	}
	m.mu.RUnlock()

	var ordered []*endpoint.Endpoint
	if m.cfg.EnableFallbackMode {
		ordered = make([]*endpoint.Endpoint, len(candidates))
		copy(ordered, candidates)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
	} else {
		ordered = order(m.cfg.Strategy, candidates, &m.rrCounter, statsSnapshot)
	}
	if len(ordered) == 0 {
		return modelclient.Response{}, "", fmt.Errorf("modelmanager: no available endpoints")
	}

	maxRetries := m.cfg.MaxRetries
	if m.cfg.AlwaysRetryAll {
		maxRetries = 0
	}

	var lastErr error
	for _, ep := range ordered {
		resp, err := m.tryEndpoint(ctx, ep, req, maxRetries)
		if err == nil {
			return resp, ep.ID, nil
		}
		lastErr = err
		if !m.cfg.AlwaysRetryAll && !modelclient.Classify(err).ShouldFailover() {
			return modelclient.Response{}, ep.ID, err
		}
	}
	return modelclient.Response{}, "", fmt.Errorf("modelmanager: all endpoints exhausted: %w", lastErr)
}

// tryEndpoint retries one endpoint up to maxRetries with exponential
// backoff, recording stats/health on every attempt.
func (m *Manager) tryEndpoint(ctx context.Context, ep *endpoint.Endpoint, req modelclient.Request, maxRetries int) (modelclient.Response, error) {
	m.mu.RLock()
	reg := m.byID[ep.ID]
	m.mu.RUnlock()
	if reg == nil {
		return modelclient.Response{}, fmt.Errorf("modelmanager: unknown endpoint %q", ep.ID)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	if req.Model == "" {
		req.Model = ep.Model
	}
	if req.Temperature == 0 {
		req.Temperature = m.cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = m.cfg.MaxTokens
	}

	backoff := m.cfg.RetryDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		start := time.Now()
		resp, err := reg.client.Complete(callCtx, req)
		duration := time.Since(start)

		if err == nil {
			m.recordSuccess(reg, duration, int64(resp.Usage.TotalTokens))
			return resp, nil
		}

		lastErr = err
		m.recordFailure(reg, duration)

		class := modelclient.Classify(err)
		if !class.Retryable() || attempt >= maxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-callCtx.Done():
			return modelclient.Response{}, callCtx.Err()
		}
	}

	return modelclient.Response{}, lastErr
}

func (m *Manager) recordSuccess(reg *registration, d time.Duration, tokens int64) {
	m.mu.Lock()
	now := time.Now()
	reg.stats.RecordSuccess(d, tokens, now)
	reg.ep.Health.Status = endpoint.HealthHealthy
	reg.ep.Health.LastCheck = now
	reg.ep.Health.ResponseTime = d
	reg.ep.Health.ErrorCount = 0
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.recordSuccess(reg.ep.ID, tokens)
	}
}

func (m *Manager) recordFailure(reg *registration, d time.Duration) {
	m.mu.Lock()
	now := time.Now()
	reg.stats.RecordError(d, now)
	reg.ep.Health.ErrorCount++
	reg.ep.Health.LastCheck = now
	reg.ep.Health.ResponseTime = d
	switch {
	case reg.ep.Health.ErrorCount >= m.cfg.FailureThreshold:
		reg.ep.Health.Status = endpoint.HealthUnavailable
	case reg.ep.Health.ErrorCount > 0:
		reg.ep.Health.Status = endpoint.HealthDegraded
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.recordError(reg.ep.ID)
	}
}
