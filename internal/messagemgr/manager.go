// Package messagemgr implements the Message Manager: rendering AgentStep
// history and the current DOM state into prompt text within a configured
// context-window budget. Grounded on the teacher's context-budgeting shape
// (trim-to-tail-percentage over a growing history) generalized from
// tool-call transcripts to AgentStep history.
package messagemgr

import (
	"fmt"
	"strings"

	"github.com/wrenlab/pilot/pkg/agentstep"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

// Config bounds history rendering and budget estimation.
type Config struct {
	MaxHistorySteps int // only the last N steps are emitted in full
	ContextWindow   int // estimated token budget
}

func (c Config) withDefaults() Config {
	if c.MaxHistorySteps <= 0 {
		c.MaxHistorySteps = 10
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = 8000
	}
	return c
}

// Manager formats AgentStep history into prompt text for the model manager.
type Manager struct {
	cfg Config
}

// New builds a Manager.
func New(cfg Config) *Manager {
	return &Manager{cfg: cfg.withDefaults()}
}

// estimateTokens implements spec.md section 4.7's `⌈chars/4⌉` estimator.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// FormatHistory renders steps as `<step_N>` blocks preceded by the
// invariant preamble, trimming to the last maxHistorySteps steps, and
// further trimming to the last 70% of that window if the token estimate
// exceeds the configured context window. currentState is never trimmed.
func (m *Manager) FormatHistory(steps []agentstep.Step, currentState *domtypes.State) string {
	const preamble = "<s>Agent initialized</s>"

	window := steps
	if len(window) > m.cfg.MaxHistorySteps {
		window = window[len(window)-m.cfg.MaxHistorySteps:]
	}

	rendered := renderSteps(window)
	body := preamble + "\n" + strings.Join(rendered, "\n")

	stateText := RenderState(currentState)
	total := estimateTokens(body) + estimateTokens(stateText)

	if total > m.cfg.ContextWindow && len(rendered) > 0 {
		keep := (len(rendered)*7 + 9) / 10 // ceil(70%)
		if keep < 1 {
			keep = 1
		}
		rendered = rendered[len(rendered)-keep:]
		body = preamble + "\n" + strings.Join(rendered, "\n")
	}

	return body + "\n" + stateText
}

func renderSteps(steps []agentstep.Step) []string {
	out := make([]string, 0, len(steps))
	for _, step := range steps {
		out = append(out, renderStep(step))
	}
	return out
}

func renderStep(step agentstep.Step) string {
	var eval, memory, goal string
	if step.AgentOutput != nil {
		eval = step.AgentOutput.EvaluationPreviousGoal
		memory = step.AgentOutput.Memory
		goal = step.AgentOutput.NextGoal
	}

	summary := "succeeded"
	if !step.Result.Success {
		summary = "failed: " + step.Result.Error
	}

	return fmt.Sprintf(
		"<step_%d>\nevaluation_previous_goal: %s\nmemory: %s\nnext_goal: %s\nresult: %s\n</step_%d>",
		step.StepNumber, eval, memory, goal, summary, step.StepNumber,
	)
}

// RenderState renders the current DOM state's URL/title and element list
// (see render.go) as prompt text.
func RenderState(state *domtypes.State) string {
	if state == nil {
		return "<browser_state>\nno page loaded\n</browser_state>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<browser_state url=%q title=%q>\n", state.URL, state.Title)
	for _, el := range state.Elements {
		sb.WriteString(RenderElement(el))
		sb.WriteString("\n")
	}
	sb.WriteString("</browser_state>")
	return sb.String()
}
