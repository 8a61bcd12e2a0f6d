package controller

import "strings"

// Kind categorizes a dispatch failure for recovery/logging purposes,
// generalized from the teacher's ToolErrorType (internal/agent/errors.go)
// from a flat retry-classification enum to the dispatch-failure taxonomy
// spec.md section 7 names.
type Kind string

const (
	KindNavigation    Kind = "navigation_during_action"
	KindNotFound      Kind = "element_not_found"
	KindNotClickable  Kind = "element_not_clickable"
	KindTimeout       Kind = "timeout"
	KindPlugin        Kind = "plugin_failure"
	KindCritical      Kind = "critical"
	KindUnknown       Kind = "unknown"
)

var criticalPatterns = []string{
	"Browser session not started",
	"Browser crashed",
	"Authentication failed",
}

// contextDestroyedPatterns are the driver error substrings spec.md section
// 4.2/7 treats as a navigation signal rather than a failure. internal/browser
// already resolves these inline for click/type_text/press_key (the three
// primitives most likely to trigger a form submit or link navigation);
// Classify catches the same substrings for every other primitive
// (navigate, go_back, execute_script, ...) so Dispatch can translate them
// the same way instead of reporting them as an unknown failure.
var contextDestroyedPatterns = []string{
	"Execution context was destroyed",
	"Cannot find context with specified id",
	"Protocol error",
}

var notFoundPatterns = []string{"not found", "out of range"}
var notClickablePatterns = []string{"covered", "not clickable"}
var timeoutPatterns = []string{"timeout", "Timeout"}

// Classify inspects err's message and returns the failure Kind plus a
// recovery hint to surface alongside the error, per spec.md section 7's
// policy table.
func Classify(err error) (Kind, string) {
	if err == nil {
		return KindUnknown, ""
	}
	msg := err.Error()

	for _, p := range criticalPatterns {
		if strings.Contains(msg, p) {
			return KindCritical, "unrecoverable: " + p
		}
	}
	for _, p := range contextDestroyedPatterns {
		if strings.Contains(msg, p) {
			return KindNavigation, "navigation interrupted the action; treat as success and refresh DOM state"
		}
	}
	for _, p := range notClickablePatterns {
		if strings.Contains(msg, p) {
			return KindNotClickable, "element may be covered by an overlay; try scrolling or waiting"
		}
	}
	for _, p := range notFoundPatterns {
		if strings.Contains(msg, p) {
			return KindNotFound, "element index may be stale; refresh the DOM state before retrying"
		}
	}
	for _, p := range timeoutPatterns {
		if strings.Contains(msg, p) {
			return KindTimeout, "operation timed out; consider a longer wait before retrying"
		}
	}
	return KindUnknown, "page changed or action is not currently possible"
}

// IsCritical reports whether kind should break the agent loop immediately.
func (k Kind) IsCritical() bool {
	return k == KindCritical
}
