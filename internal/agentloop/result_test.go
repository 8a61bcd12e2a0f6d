package agentloop

import (
	"testing"
	"time"

	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

func TestBuildResultComputesSuccessRateAndFinalURL(t *testing.T) {
	start := time.Now()
	steps := []Step{
		{StepNumber: 1, Result: actions.Result{Success: true}, DOMState: &domtypes.State{URL: "https://a.test"}},
		{StepNumber: 2, Result: actions.Result{Success: false, Error: "boom"}, DOMState: &domtypes.State{URL: "https://b.test"}},
		{StepNumber: 3, Result: actions.Result{Success: true, Screenshot: []byte{1, 2, 3}}, DOMState: &domtypes.State{URL: "https://c.test"}},
	}

	result := buildResult("a task", steps, true, true, RunMetadata{AgentID: "a1", SessionID: "s1"}, start, start.Add(2*time.Second))

	if result.Metadata.ErrorCount != 1 {
		t.Fatalf("expected error count 1, got %d", result.Metadata.ErrorCount)
	}
	if result.Metadata.ScreenshotCount != 1 {
		t.Fatalf("expected screenshot count 1, got %d", result.Metadata.ScreenshotCount)
	}
	if result.Metadata.FinalURL != "https://c.test" {
		t.Fatalf("expected final url from last step, got %q", result.Metadata.FinalURL)
	}
	want := 2.0 / 3.0
	if result.Metadata.SuccessRate != want {
		t.Fatalf("expected success rate %v, got %v", want, result.Metadata.SuccessRate)
	}
	if result.TotalDuration != 2*time.Second {
		t.Fatalf("expected total duration 2s, got %v", result.TotalDuration)
	}
}

func TestBuildResultEmptyHistorySuccessRateDefault(t *testing.T) {
	start := time.Now()
	result := buildResult("a task", nil, true, false, RunMetadata{}, start, start)
	if result.Metadata.SuccessRate != 1.0 {
		t.Fatalf("expected default success rate 1.0 for empty history, got %v", result.Metadata.SuccessRate)
	}
}
