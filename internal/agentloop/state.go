// Package agentloop implements the Agent Loop: the perception/decision/
// action cycle that ties together internal/dom, internal/controller,
// internal/modelmanager, and internal/messagemgr into bounded, observable
// steps. Grounded on the teacher's iteration shape in internal/agent/loop.go
// (LoopConfig, step scheduling, history append) generalized from tool-call
// orchestration to the browser perception/decision/action cycle spec.md
// section 4.5 describes.
package agentloop

import (
	"time"

	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/agentstep"
)

// Step is one entry in the agent's append-only history (AgentStep). Defined
// in pkg/agentstep to keep it importable from internal/messagemgr without an
// import cycle back through this package's dependency on messagemgr.Manager.
type Step = agentstep.Step

// State is the agent's mutable run state (AgentState). memorySize bounds
// Memory's length; the default of 10 matches spec.md section 4.5 step (k)'s
// "push memory (cap last 10)".
type State struct {
	StepNumber          int
	ConsecutiveFailures int
	LastActionType       actions.Type
	LastActionTarget     int
	LastGoal             string
	CurrentGoal          string
	Memory               []string
	memorySize           int
	StartTime            time.Time
	Stopped              bool
	Paused               bool
	SimilarActionCount   int
}

// NewState returns a fresh State with memory bounded to memorySize entries
// (0 defaults to 10).
func NewState(memorySize int) *State {
	if memorySize <= 0 {
		memorySize = 10
	}
	return &State{memorySize: memorySize, StartTime: time.Now()}
}

// PushMemory appends entry to Memory, trimming to the oldest-dropped bound
// once memorySize is exceeded.
func (s *State) PushMemory(entry string) {
	s.Memory = append(s.Memory, entry)
	if len(s.Memory) > s.memorySize {
		s.Memory = s.Memory[len(s.Memory)-s.memorySize:]
	}
}

// RecordOutcome bumps or resets ConsecutiveFailures and updates
// LastActionType/LastActionTarget/LastGoal/CurrentGoal per spec.md
// section 4.5 step (k).
func (s *State) RecordOutcome(a actions.Action, success bool, goal string) {
	if success {
		s.ConsecutiveFailures = 0
	} else {
		s.ConsecutiveFailures++
	}
	s.LastActionType = a.Type
	s.LastActionTarget = a.Index
	s.LastGoal = s.CurrentGoal
	s.CurrentGoal = goal
}

// Stop requests cooperative termination at the next step boundary, per
// spec.md section 5's cancellation model.
func (s *State) Stop() { s.Stopped = true }
