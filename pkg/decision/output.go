// Package decision holds the AgentOutput wire shape the model manager
// requests each step and the Controller's tab-switch instructions derived
// from it.
package decision

import "github.com/wrenlab/pilot/pkg/actions"

// TabDecision tells the agent loop whether to switch tabs before dispatching
// Action.
type TabDecision struct {
	ShouldSwitch bool   `json:"should_switch"`
	TargetTabID  string `json:"target_tab_id,omitempty"`
	Reason       string `json:"reason"`
}

// Output is the model's per-step structured decision (AgentOutput).
// Thinking is the only optional field; every other field is required by the
// Decision Schema in schema.go.
type Output struct {
	Thinking               string          `json:"thinking,omitempty"`
	EvaluationPreviousGoal string          `json:"evaluation_previous_goal"`
	Memory                 string          `json:"memory"`
	NextGoal               string          `json:"next_goal"`
	TabDecision            TabDecision     `json:"tab_decision"`
	Action                 actions.Action  `json:"action"`
}

// Fallback returns the AgentOutput synthesized when a model response could
// not be parsed or repaired into a valid Output: a one-second wait, so the
// loop makes forward progress instead of aborting.
func Fallback(reason string) Output {
	return Output{
		EvaluationPreviousGoal: "unknown",
		Memory:                 reason,
		NextGoal:               "retry after parse failure",
		TabDecision:            TabDecision{ShouldSwitch: false, Reason: "no decision parsed"},
		Action:                 actions.Action{Type: actions.Wait, Seconds: 1},
	}
}
