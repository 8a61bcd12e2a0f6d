package dom

import (
	"encoding/json"
	"testing"

	"github.com/wrenlab/pilot/pkg/domtypes"
)

// TestParseRawResult exercises the JSON decode + domtypes conversion path
// without requiring a live browser: it feeds the shape the embedded script
// produces directly through the same decode logic Snapshot uses.
func TestParseRawResult(t *testing.T) {
	payload := `{
		"url": "https://example.com",
		"title": "Example",
		"elements": [
			{"index": 0, "tag": "a", "text": "home", "attributes": {"href": "/"}, "xpath": "/html[1]/body[1]/a[1]", "is_clickable": true, "is_visible": true, "interaction_type": "click"},
			{"index": 1, "tag": "input", "text": "", "attributes": {"type": "text"}, "xpath": "/html[1]/body[1]/input[1]", "is_clickable": false, "is_visible": true, "interaction_type": "input"}
		]
	}`

	var parsed rawResult
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}

	state := &domtypes.State{URL: parsed.URL, Title: parsed.Title}
	for _, el := range parsed.Elements {
		state.Elements = append(state.Elements, domtypes.Element{
			Index:           el.Index,
			Tag:             el.Tag,
			Text:            el.Text,
			Attributes:      el.Attributes,
			XPath:           el.XPath,
			IsClickable:     el.IsClickable,
			IsVisible:       el.IsVisible,
			InteractionType: domtypes.InteractionType(el.InteractionType),
		})
	}

	if err := state.Validate(); err != nil {
		t.Fatalf("expected valid state, got: %v", err)
	}
	if len(state.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(state.Elements))
	}
	el, ok := state.ElementByIndex(1)
	if !ok || el.InteractionType != domtypes.InteractionInput {
		t.Fatalf("expected input element at index 1, got %+v ok=%v", el, ok)
	}
}

func TestEmbeddedScriptNotEmpty(t *testing.T) {
	if len(snapshotScript) < 100 {
		t.Fatalf("expected embedded snapshot script to be non-trivial, got %d bytes", len(snapshotScript))
	}
}
