package modelmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wrenlab/pilot/internal/modelclient"
	"github.com/wrenlab/pilot/pkg/endpoint"
)

type fakeClient struct {
	name    string
	calls   int
	fail    int // number of leading calls that fail
	failErr error
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Complete(ctx context.Context, req modelclient.Request) (modelclient.Response, error) {
	f.calls++
	if f.calls <= f.fail {
		return modelclient.Response{}, f.failErr
	}
	return modelclient.Response{Content: "ok from " + f.name, Usage: modelclient.Usage{TotalTokens: 10}}, nil
}

func TestManagerCompleteSuccessFirstTry(t *testing.T) {
	ep := &endpoint.Endpoint{ID: "a", Enabled: true, Priority: 1}
	client := &fakeClient{name: "a"}
	m := New(Config{Strategy: StrategyPriority, MaxRetries: 1, RetryDelay: time.Millisecond}, nil, map[*endpoint.Endpoint]modelclient.Client{ep: client})

	resp, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "a" || resp.Content != "ok from a" {
		t.Fatalf("unexpected response: id=%q resp=%+v", id, resp)
	}

	stats, ok := m.Stats("a")
	if !ok || stats.SuccessCount != 1 || stats.RequestCount != 1 {
		t.Fatalf("unexpected stats: %+v ok=%v", stats, ok)
	}
}

func TestManagerFailoverToSecondEndpoint(t *testing.T) {
	primary := &endpoint.Endpoint{ID: "primary", Enabled: true, Priority: 1}
	secondary := &endpoint.Endpoint{ID: "secondary", Enabled: true, Priority: 2}

	primaryClient := &fakeClient{name: "primary", fail: 100, failErr: errors.New("500 internal server error")}
	secondaryClient := &fakeClient{name: "secondary"}

	m := New(Config{Strategy: StrategyPriority, MaxRetries: 0, RetryDelay: time.Millisecond}, nil, map[*endpoint.Endpoint]modelclient.Client{
		primary:   primaryClient,
		secondary: secondaryClient,
	})

	resp, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "secondary" || resp.Content != "ok from secondary" {
		t.Fatalf("expected failover to secondary, got id=%q resp=%+v", id, resp)
	}

	pStats, _ := m.Stats("primary")
	sStats, _ := m.Stats("secondary")
	if pStats.ErrorCount != 1 {
		t.Fatalf("expected primary errorCount=1, got %d", pStats.ErrorCount)
	}
	if sStats.SuccessCount != 1 {
		t.Fatalf("expected secondary successCount=1, got %d", sStats.SuccessCount)
	}
	// P7: successCount+errorCount=requestCount, checked per endpoint.
	if pStats.SuccessCount+pStats.ErrorCount != pStats.RequestCount {
		t.Fatalf("P7 violated for primary: %+v", pStats)
	}
	if sStats.SuccessCount+sStats.ErrorCount != sStats.RequestCount {
		t.Fatalf("P7 violated for secondary: %+v", sStats)
	}
}

func TestManagerNonFailoverErrorStopsImmediately(t *testing.T) {
	primary := &endpoint.Endpoint{ID: "primary", Enabled: true, Priority: 1}
	secondary := &endpoint.Endpoint{ID: "secondary", Enabled: true, Priority: 2}

	primaryClient := &fakeClient{name: "primary", fail: 100, failErr: errors.New("400 invalid request: malformed schema")}
	secondaryClient := &fakeClient{name: "secondary"}

	m := New(Config{Strategy: StrategyPriority, MaxRetries: 0, RetryDelay: time.Millisecond}, nil, map[*endpoint.Endpoint]modelclient.Client{
		primary:   primaryClient,
		secondary: secondaryClient,
	})

	_, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err == nil {
		t.Fatal("expected error for invalid request class")
	}
	if id != "primary" {
		t.Fatalf("expected error attributed to primary without failover, got id=%q", id)
	}
	if secondaryClient.calls != 0 {
		t.Fatalf("expected secondary not to be tried, got %d calls", secondaryClient.calls)
	}
}

func TestManagerFallbackModeTriesUnhealthyEndpointInPriorityOrder(t *testing.T) {
	primary := &endpoint.Endpoint{ID: "primary", Enabled: true, Priority: 1, Health: endpoint.Health{Status: endpoint.HealthUnavailable, LastCheck: time.Now()}}
	secondary := &endpoint.Endpoint{ID: "secondary", Enabled: true, Priority: 2}

	primaryClient := &fakeClient{name: "primary"}
	secondaryClient := &fakeClient{name: "secondary"}

	m := New(Config{Strategy: StrategyPriority, EnableFallbackMode: true, HealthCheckWindow: time.Hour}, nil, map[*endpoint.Endpoint]modelclient.Client{
		primary:   primaryClient,
		secondary: secondaryClient,
	})

	// Without fallback mode, primary's long HealthCheckWindow would exclude
	// it entirely; fallback mode must still reach it first since it has the
	// lower (declaration-order) Priority.
	_, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "primary" {
		t.Fatalf("expected fallback mode to try the unavailable primary first, got id=%q", id)
	}
}

func TestManagerAlwaysRetryAllBypassesFailoverClassification(t *testing.T) {
	primary := &endpoint.Endpoint{ID: "primary", Enabled: true, Priority: 1}
	secondary := &endpoint.Endpoint{ID: "secondary", Enabled: true, Priority: 2}

	// A non-failover-worthy error class would normally stop the loop at
	// primary; alwaysRetryAll must still move on to secondary.
	primaryClient := &fakeClient{name: "primary", fail: 100, failErr: errors.New("400 invalid request: malformed schema")}
	secondaryClient := &fakeClient{name: "secondary"}

	m := New(Config{Strategy: StrategyPriority, MaxRetries: 3, AlwaysRetryAll: true, RetryDelay: time.Millisecond}, nil, map[*endpoint.Endpoint]modelclient.Client{
		primary:   primaryClient,
		secondary: secondaryClient,
	})

	_, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "secondary" {
		t.Fatalf("expected alwaysRetryAll to reach secondary, got id=%q", id)
	}
	// Exactly one attempt per endpoint: alwaysRetryAll bypasses maxRetries.
	if primaryClient.calls != 1 {
		t.Fatalf("expected one attempt against primary, got %d", primaryClient.calls)
	}
}

func TestManagerDisableHealthCheckIgnoresUnavailableStatus(t *testing.T) {
	ep := &endpoint.Endpoint{ID: "flaky", Enabled: true, Priority: 1, Health: endpoint.Health{Status: endpoint.HealthUnavailable, LastCheck: time.Now()}}
	client := &fakeClient{name: "flaky"}

	m := New(Config{Strategy: StrategyPriority, DisableHealthCheck: true, HealthCheckWindow: time.Hour}, nil, map[*endpoint.Endpoint]modelclient.Client{ep: client})

	_, id, err := m.Complete(context.Background(), modelclient.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "flaky" {
		t.Fatalf("expected disableHealthCheck to try the unavailable endpoint, got id=%q", id)
	}
}

func TestManagerLoadBalanceRanksByResponseTimePerWeight(t *testing.T) {
	fast := &endpoint.Endpoint{ID: "fast", Enabled: true, Priority: 2, Weight: 1}
	slow := &endpoint.Endpoint{ID: "slow", Enabled: true, Priority: 1, Weight: 1}

	stats := map[string]endpoint.Stats{
		"fast": {AverageResponseTime: 10 * time.Millisecond},
		"slow": {AverageResponseTime: 100 * time.Millisecond},
	}

	var counter uint64
	ordered := order(StrategyLoadBalance, []*endpoint.Endpoint{slow, fast}, &counter, stats)
	if len(ordered) != 2 || ordered[0].ID != "fast" {
		t.Fatalf("expected the lower averageResponseTime/weight endpoint first, got %v", ids(ordered))
	}
}

func TestManagerLoadBalanceTiesBreakByPriority(t *testing.T) {
	a := &endpoint.Endpoint{ID: "a", Enabled: true, Priority: 2, Weight: 1}
	b := &endpoint.Endpoint{ID: "b", Enabled: true, Priority: 1, Weight: 1}

	stats := map[string]endpoint.Stats{
		"a": {AverageResponseTime: 50 * time.Millisecond},
		"b": {AverageResponseTime: 50 * time.Millisecond},
	}

	var counter uint64
	ordered := order(StrategyLoadBalance, []*endpoint.Endpoint{a, b}, &counter, stats)
	if len(ordered) != 2 || ordered[0].ID != "b" {
		t.Fatalf("expected the tie broken by lower priority first, got %v", ids(ordered))
	}
}

func ids(eps []*endpoint.Endpoint) []string {
	out := make([]string, len(eps))
	for i, e := range eps {
		out[i] = e.ID
	}
	return out
}

func TestManagerMarksEndpointUnavailableAfterThreshold(t *testing.T) {
	ep := &endpoint.Endpoint{ID: "flaky", Enabled: true, Priority: 1}
	client := &fakeClient{name: "flaky", fail: 100, failErr: errors.New("503 service unavailable")}

	m := New(Config{Strategy: StrategyPriority, MaxRetries: 0, RetryDelay: time.Millisecond, FailureThreshold: 2}, nil, map[*endpoint.Endpoint]modelclient.Client{ep: client})

	for i := 0; i < 2; i++ {
		_, _, _ = m.Complete(context.Background(), modelclient.Request{})
	}

	health, ok := m.Health("flaky")
	if !ok || health.Status != endpoint.HealthUnavailable {
		t.Fatalf("expected endpoint marked unavailable, got %+v ok=%v", health, ok)
	}
}
