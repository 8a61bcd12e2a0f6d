// Package agentstep defines Step, the agent loop's append-only history
// entry. It is split out from internal/agentloop so that internal/messagemgr
// can format history without importing the loop package that in turn
// depends on messagemgr.Manager, which would otherwise be an import cycle.
package agentstep

import (
	"time"

	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/decision"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

// Step is one entry in the agent's append-only history (AgentStep).
type Step struct {
	StepNumber  int              `json:"step_number"`
	Action      actions.Action   `json:"action"`
	Result      actions.Result   `json:"result"`
	DOMState    *domtypes.State  `json:"dom_state,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	AgentOutput *decision.Output `json:"agent_output,omitempty"`
}
