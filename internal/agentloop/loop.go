// Package agentloop ties internal/controller, internal/modelmanager, and
// internal/messagemgr into the bounded perception/decision/action cycle
// spec.md section 4.5 describes. See state.go for the package doc on the
// teacher grounding.
package agentloop

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/internal/controller"
	"github.com/wrenlab/pilot/internal/dom"
	"github.com/wrenlab/pilot/internal/messagemgr"
	"github.com/wrenlab/pilot/internal/modelclient"
	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/decision"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

// ModelManager is the subset of internal/modelmanager.Manager the loop
// needs: request a structured decision, get back which endpoint served it.
type ModelManager interface {
	Complete(ctx context.Context, req modelclient.Request) (modelclient.Response, string, error)
}

// ActionController is the subset of internal/controller.Controller the
// loop drives: snapshot, dispatch, vision, and tab enumeration.
// internal/controller.Controller implements this; accepting the interface
// here keeps the loop's step algorithm testable without a live browser.
type ActionController interface {
	DOMState(opts dom.Options) (*domtypes.State, error)
	Dispatch(ctx context.Context, a actions.Action) actions.Result
	Screenshot() ([]byte, error)
	Tabs() []browser.TabInfo
}

// PluginDescriptor supplies the registered plugin ids the loop embeds in
// the decision request, per spec.md section 4.5 step (d).
type PluginDescriptor interface {
	RegisteredIDs() []string
}

// Config bounds one Loop run, matching spec.md section 6's Agent
// configuration surface.
type Config struct {
	MaxSteps               int
	MaxConsecutiveFailures int
	MaxSimilarActions      int
	EnableLoopDetection    bool
	UseVision              bool
	MemorySize             int
	SystemPrompt           string
}

func (c Config) withDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 50
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = 3
	}
	if c.MaxSimilarActions <= 0 {
		c.MaxSimilarActions = 3
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = "You control a web browser one action at a time. Respond only with the required JSON decision."
	}
	return c
}

// Loop is the Agent's primary state machine: Idle -> Running ->
// (Completed | Stopped | Failed), per spec.md section 4.5.
type Loop struct {
	cfg        Config
	controller ActionController
	models     ModelManager
	messages   *messagemgr.Manager
	plugins    PluginDescriptor
	agentID    string
	sessionID  string
}

// New builds a Loop. plugins may be nil if no plugins are registered.
func New(cfg Config, ctrl ActionController, models ModelManager, messages *messagemgr.Manager, plugins PluginDescriptor, agentID, sessionID string) *Loop {
	return &Loop{
		cfg:        cfg.withDefaults(),
		controller: ctrl,
		models:     models,
		messages:   messages,
		plugins:    plugins,
		agentID:    agentID,
		sessionID:  sessionID,
	}
}

// Run executes the step algorithm of spec.md section 4.5 until a done
// action, max-step exhaustion, forced termination on repeated failures, a
// critical error, or cooperative Stop (cancelling ctx). It always returns a
// Result; the error return is always nil.
func (l *Loop) Run(ctx context.Context, task string) (Result, error) {
	start := time.Now()
	state := NewState(l.cfg.MemorySize)
	state.CurrentGoal = task

	var history []Step
	meta := RunMetadata{AgentID: l.agentID, SessionID: l.sessionID}

	for stepNumber := 1; stepNumber <= l.cfg.MaxSteps; stepNumber++ {
		// Cancelling ctx requests a cooperative stop at this step boundary.
		if ctx.Err() != nil {
			state.Stop()
		}
		if state.Stopped {
			return buildResult(task, history, true, false, meta, start, time.Now()), nil
		}

		// a. Refresh DOMState.
		domState, err := l.controller.DOMState(dom.Options{})
		if err != nil {
			slog.Warn("agentloop: DOMState refresh failed, skipping step", "step", stepNumber, "error", err)
			continue
		}

		// b. Optional screenshot.
		var screenshot []byte
		if l.cfg.UseVision {
			screenshot, _ = l.controller.Screenshot()
		}

		// c. Format history.
		historyText := l.messages.FormatHistory(history, domState)
		if notice := messagemgr.AnalyzePatterns(history).Render(); notice != "" {
			slog.Info("agentloop: pattern notice", "step", stepNumber, "notice", notice)
			historyText += "\n" + notice
		}

		// d. Gather tabs and plugin descriptors.
		tabs := l.controller.Tabs()
		var pluginIDs []string
		if l.plugins != nil {
			pluginIDs = l.plugins.RegisteredIDs()
		}

		// e. Request structured decision.
		req := l.buildRequest(task, historyText, tabs, pluginIDs, screenshot)
		out := l.decide(ctx, req)

		// f. Tab switch, then re-read state.
		if out.TabDecision.ShouldSwitch {
			switchResult := l.controller.Dispatch(ctx, actions.Action{
				Type:  actions.SwitchTab,
				TabID: out.TabDecision.TargetTabID,
			})
			if switchResult.Success {
				if refreshed, err := l.controller.DOMState(dom.Options{}); err == nil {
					domState = refreshed
				}
				if l.cfg.UseVision {
					screenshot, _ = l.controller.Screenshot()
				}
			}
		}

		// g. Loop detection.
		if l.cfg.EnableLoopDetection {
			if detected, reason := DetectLoop(history, out, state.ConsecutiveFailures, l.cfg.MaxSimilarActions); detected {
				slog.Info("agentloop: loop detected", "step", stepNumber, "reason", reason, "consecutive_failures", state.ConsecutiveFailures)
				if state.ConsecutiveFailures >= l.cfg.MaxConsecutiveFailures {
					forced := actions.Action{Type: actions.Done, Success: false, Message: "forced termination: " + reason}
					res := l.controller.Dispatch(ctx, forced)
					history = append(history, Step{
						StepNumber:  stepNumber,
						Action:      forced,
						Result:      res,
						DOMState:    domState,
						Timestamp:   time.Now(),
						AgentOutput: &out,
					})
					return buildResult(task, history, true, false, meta, start, time.Now()), nil
				}
				history = append(history, Step{
					StepNumber: stepNumber,
					Action:     out.Action,
					Result:     actions.Result{Success: false, Error: "loop detected: " + reason},
					DOMState:   domState,
					Timestamp:  time.Now(),
					AgentOutput: &out,
				})
				state.RecordOutcome(out.Action, false, out.NextGoal)
				continue
			}
		}

		// h. Validate the action.
		if !validAction(domState, out.Action) {
			slog.Warn("agentloop: invalid action, terminating step", "step", stepNumber, "action_type", out.Action.Type, "index", out.Action.Index)
			continue
		}

		// i. Execute; record duration via Controller.Dispatch.
		result := l.controller.Dispatch(ctx, out.Action)

		// j. Navigation settlement.
		if result.NavigationDetected {
			select {
			case <-time.After(1500 * time.Millisecond):
			case <-ctx.Done():
			}
			if refreshed, err := l.controller.DOMState(dom.Options{}); err == nil {
				domState = refreshed
			}
		}

		// k. Update AgentState and append history.
		state.PushMemory(out.Memory)
		state.RecordOutcome(out.Action, result.Success, out.NextGoal)
		state.StepNumber = stepNumber

		history = append(history, Step{
			StepNumber:  stepNumber,
			Action:      out.Action,
			Result:      result,
			DOMState:    domState,
			Timestamp:   time.Now(),
			AgentOutput: &out,
		})

		// Critical errors break the loop immediately with success=false.
		if !result.Success {
			if kind, _ := controller.Classify(errors.New(result.Error)); kind.IsCritical() {
				slog.Error("agentloop: critical error, terminating run", "step", stepNumber, "error", result.Error)
				return buildResult(task, history, true, false, meta, start, time.Now()), nil
			}
		}

		// l. Done termination.
		if out.Action.Type == actions.Done {
			return buildResult(task, history, true, out.Action.Success, meta, start, time.Now()), nil
		}
	}

	return buildResult(task, history, true, false, meta, start, time.Now()), nil
}

// decide requests a decision and applies the lenient-repair/fallback chain
// of spec.md section 4.5 step (e).
func (l *Loop) decide(ctx context.Context, req modelclient.Request) decision.Output {
	resp, _, err := l.models.Complete(ctx, req)
	if err != nil {
		return decision.Fallback(err.Error())
	}
	return decision.ParseLenient([]byte(resp.Content))
}

// buildRequest assembles the per-step decision request: system prompt
// embedding the task, user message embedding history + browser_state +
// tabs + schema, and an optional screenshot image part.
func (l *Loop) buildRequest(task, historyText string, tabs []browser.TabInfo, pluginIDs []string, screenshot []byte) modelclient.Request {
	tabsJSON, _ := json.Marshal(tabs)
	pluginsJSON, _ := json.Marshal(pluginIDs)

	userContent := fmt.Sprintf(
		"task: %s\n\n%s\n\ntabs: %s\n\nregistered_plugins: %s\n\nRespond with JSON matching the required decision schema.",
		task, historyText, tabsJSON, pluginsJSON,
	)

	msg := modelclient.Message{Role: "user", Content: userContent}
	if len(screenshot) > 0 {
		msg.ImageBase64 = screenshotBase64(screenshot)
	}

	return modelclient.Request{
		Messages: []modelclient.Message{
			{Role: "system", Content: l.cfg.SystemPrompt + "\ntask: " + task},
			msg,
		},
		ResponseSchema: decision.JSONSchema(),
	}
}

// validAction rejects an action referencing an element index absent from
// domState, when no alternate locator (xpath/css/attributes) was supplied,
// per P6. Actions with no element target are always valid at this layer.
func validAction(domState *domtypes.State, a actions.Action) bool {
	if a.Type == "" {
		return false
	}
	if !usesIndexLocator(a.Type) {
		return true
	}
	if a.XPath != "" || a.CSSSelector != "" || len(a.Attributes) > 0 {
		return true
	}
	if domState == nil {
		return false
	}
	_, ok := domState.ElementByIndex(a.Index)
	return ok
}

func screenshotBase64(shot []byte) string {
	return base64.StdEncoding.EncodeToString(shot)
}

func usesIndexLocator(t actions.Type) bool {
	switch t {
	case actions.Click, actions.Hover, actions.Type_, actions.Select, actions.UploadFile, actions.DragDrop:
		return true
	default:
		return false
	}
}
