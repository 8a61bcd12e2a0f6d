package agentloop

import (
	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/decision"
)

// recentWindow is how many trailing steps loop detection examines, per
// spec.md section 4.5.1.
const recentWindow = 5

// recent returns the last up to recentWindow entries of history.
func recent(history []Step) []Step {
	if len(history) <= recentWindow {
		return history
	}
	return history[len(history)-recentWindow:]
}

// DetectLoop examines the last recentWindow steps against the candidate
// decision about to execute and flags any of the four signatures in
// spec.md section 4.5.1. It never consults the full history, and never
// mutates state; callers decide what to do with the verdict.
func DetectLoop(history []Step, candidate decision.Output, consecutiveFailures, maxSimilarActions int) (bool, string) {
	window := recent(history)

	if maxSimilarActions <= 0 {
		maxSimilarActions = 1
	}

	if count := countEqualActions(window, candidate.Action); count >= maxSimilarActions {
		return true, "identical action repeated"
	}

	if consecutiveFailures > 1 && countMatchingGoal(window, candidate.NextGoal) >= 3 {
		return true, "goal repeated with failures"
	}

	if candidate.Action.Type == actions.Wait && countWaits(window) >= 2 {
		return true, "wait-loop"
	}

	if maxRepeatedEvaluation(window) >= 2 {
		return true, "evaluation repeated"
	}

	return false, ""
}

func countEqualActions(window []Step, a actions.Action) int {
	count := 0
	for _, step := range window {
		if step.Action.Equal(a) {
			count++
		}
	}
	return count
}

func countMatchingGoal(window []Step, goal string) int {
	if goal == "" {
		return 0
	}
	count := 0
	for _, step := range window {
		if step.AgentOutput != nil && step.AgentOutput.NextGoal == goal {
			count++
		}
	}
	return count
}

func countWaits(window []Step) int {
	count := 0
	for _, step := range window {
		if step.Action.Type == actions.Wait {
			count++
		}
	}
	return count
}

func maxRepeatedEvaluation(window []Step) int {
	counts := make(map[string]int)
	best := 0
	for _, step := range window {
		if step.AgentOutput == nil || step.AgentOutput.EvaluationPreviousGoal == "" {
			continue
		}
		counts[step.AgentOutput.EvaluationPreviousGoal]++
		if counts[step.AgentOutput.EvaluationPreviousGoal] > best {
			best = counts[step.AgentOutput.EvaluationPreviousGoal]
		}
	}
	return best
}
