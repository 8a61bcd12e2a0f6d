package messagemgr

import (
	"testing"
	"time"

	"github.com/wrenlab/pilot/pkg/agentstep"
	"github.com/wrenlab/pilot/pkg/actions"
)

func TestAnalyzePatternsDetectsRepeatedAction(t *testing.T) {
	base := time.Now()
	var steps []agentstep.Step
	for i := 0; i < 4; i++ {
		steps = append(steps, agentstep.Step{
			StepNumber: i,
			Action:     actions.Action{Type: actions.Click, Index: 7},
			Result:     actions.Result{Success: false, Error: "element not found"},
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		})
	}

	report := AnalyzePatterns(steps)

	if report.RepeatCount != 4 {
		t.Fatalf("expected repeat count 4, got %d", report.RepeatCount)
	}
	if report.FailureRate != 1.0 {
		t.Fatalf("expected failure rate 1.0, got %v", report.FailureRate)
	}
	if len(report.TopErrors) != 1 || report.TopErrors[0] != "element not found" {
		t.Fatalf("expected single recurring error, got %v", report.TopErrors)
	}
	if report.Render() == "" {
		t.Fatal("expected non-empty render for a noteworthy report")
	}
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	report := AnalyzePatterns(nil)
	if report.Render() != "" {
		t.Fatalf("expected empty render for empty history, got %q", report.Render())
	}
}

func TestAnalyzePatternsAverageStepTime(t *testing.T) {
	base := time.Now()
	steps := []agentstep.Step{
		{StepNumber: 0, Action: actions.Action{Type: actions.Wait}, Result: actions.Result{Success: true}, Timestamp: base},
		{StepNumber: 1, Action: actions.Action{Type: actions.Click, Index: 1}, Result: actions.Result{Success: true}, Timestamp: base.Add(2 * time.Second)},
		{StepNumber: 2, Action: actions.Action{Type: actions.Click, Index: 2}, Result: actions.Result{Success: true}, Timestamp: base.Add(4 * time.Second)},
	}

	report := AnalyzePatterns(steps)
	if report.AverageStepTime != 2*time.Second {
		t.Fatalf("expected average step time of 2s, got %v", report.AverageStepTime)
	}
}
