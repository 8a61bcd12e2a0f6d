package decision

import (
	"strings"
	"testing"
)

const validPayload = `{
  "thinking": "need to click the submit button",
  "evaluation_previous_goal": "page loaded successfully",
  "memory": "on checkout page",
  "next_goal": "submit the form",
  "tab_decision": {"should_switch": false, "reason": "staying on current tab"},
  "action": {"type": "click", "index": 4}
}`

func TestParseValid(t *testing.T) {
	out, err := Parse([]byte(validPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.NextGoal != "submit the form" {
		t.Fatalf("unexpected next goal: %q", out.NextGoal)
	}
	if out.Action.Index != 4 {
		t.Fatalf("expected action index 4, got %d", out.Action.Index)
	}
}

func TestParseMissingRequiredField(t *testing.T) {
	missing := `{"evaluation_previous_goal": "x", "memory": "y", "next_goal": "z", "tab_decision": {"should_switch": false, "reason": "r"}, "action": {"type": "wait"}}`
	if _, err := Parse([]byte(missing)); err == nil {
		t.Fatal("expected schema validation error for missing thinking field")
	}
}

func TestParseRejectsAdditionalProperties(t *testing.T) {
	extra := strings.Replace(validPayload, `"memory"`, `"bogus_field": 1, "memory"`, 1)
	if _, err := Parse([]byte(extra)); err == nil {
		t.Fatal("expected schema validation error for additional property")
	}
}

func TestParseLenientRepairsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + validPayload + "\n```"
	out := ParseLenient([]byte(fenced))
	if out.NextGoal != "submit the form" {
		t.Fatalf("expected repaired parse to succeed, got %+v", out)
	}
}

func TestParseLenientFallsBackOnGarbage(t *testing.T) {
	out := ParseLenient([]byte("not json at all"))
	if out.Action.Type != "wait" {
		t.Fatalf("expected fallback wait action, got %+v", out.Action)
	}
	if out.Action.Seconds != 1 {
		t.Fatalf("expected fallback wait of 1 second, got %v", out.Action.Seconds)
	}
}

func TestParseLenientRepairsTrailingComma(t *testing.T) {
	withTrailingComma := `{
  "thinking": "t",
  "evaluation_previous_goal": "e",
  "memory": "m",
  "next_goal": "n",
  "tab_decision": {"should_switch": false, "reason": "r",},
  "action": {"type": "wait", "seconds": 2},
}`
	out := ParseLenient([]byte(withTrailingComma))
	if out.Action.Type != "wait" || out.Action.Seconds != 2 {
		t.Fatalf("expected trailing-comma repair to recover wait action, got %+v", out.Action)
	}
}

func TestParseLenientTakesFirstArrayElement(t *testing.T) {
	arr := "[" + validPayload + ", " + validPayload + "]"
	out := ParseLenient([]byte(arr))
	if out.NextGoal != "submit the form" {
		t.Fatalf("expected first array element to parse, got %+v", out)
	}
}
