package semantic

import (
	"testing"

	"github.com/wrenlab/pilot/pkg/domtypes"
)

func TestClassifySearchInput(t *testing.T) {
	el := domtypes.Element{
		Tag:        "input",
		Attributes: map[string]string{"type": "search", "placeholder": "Search the site", "id": "search-box"},
	}
	c := Classify(el)
	if c.Type != "search_input" {
		t.Fatalf("expected search_input, got %q (confidence %v)", c.Type, c.Confidence)
	}
	if c.Confidence < threshold {
		t.Fatalf("expected confidence above threshold, got %v", c.Confidence)
	}
}

func TestClassifyUnknownFallback(t *testing.T) {
	el := domtypes.Element{Tag: "div", Text: "some unrelated filler content"}
	c := Classify(el)
	if c.Type != "unknown" || c.Priority != 3 || c.Confidence != 0.3 {
		t.Fatalf("expected unknown fallback, got %+v", c)
	}
}

func TestClassifySubmitButton(t *testing.T) {
	el := domtypes.Element{
		Tag:        "button",
		Text:       "Submit",
		Attributes: map[string]string{"type": "submit"},
	}
	c := Classify(el)
	if c.Type != "submit_button" {
		t.Fatalf("expected submit_button, got %q", c.Type)
	}
}

func TestClassifyPicksHighestScoringRule(t *testing.T) {
	// Matches both navigation_link (tag=a) and download_button (href contains
	// "download") more strongly; download_button should win on href+text.
	el := domtypes.Element{
		Tag:        "a",
		Text:       "Download",
		Attributes: map[string]string{"href": "/files/report.pdf?action=download"},
	}
	c := Classify(el)
	if c.Type != "download_button" {
		t.Fatalf("expected download_button to win, got %q", c.Type)
	}
}
