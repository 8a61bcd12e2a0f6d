package messagemgr

import (
	"strings"
	"testing"

	"github.com/wrenlab/pilot/pkg/domtypes"
)

func TestRenderElementIncludesCuratedAttributes(t *testing.T) {
	el := domtypes.Element{
		Index: 3,
		Tag:   "input",
		Text:  "",
		Attributes: map[string]string{
			"type":        "search",
			"placeholder": "Search the site",
			"class":       "  form-control   search-box  ",
			"id":          "search-box",
		},
	}
	rendered := RenderElement(el)

	if !strings.Contains(rendered, "[3]") {
		t.Fatalf("expected index marker, got %q", rendered)
	}
	if !strings.Contains(rendered, `type="search"`) {
		t.Fatalf("expected type attribute, got %q", rendered)
	}
	if !strings.Contains(rendered, "🔍") {
		t.Fatalf("expected search_input emoji prefix, got %q", rendered)
	}
	if strings.Contains(rendered, "  ") {
		t.Fatalf("expected class tokens filtered of extra whitespace, got %q", rendered)
	}
}

func TestRenderElementTruncatesHrefAndText(t *testing.T) {
	el := domtypes.Element{
		Index: 1,
		Tag:   "a",
		Text:  strings.Repeat("word ", 40),
		Attributes: map[string]string{
			"href": "https://example.com/" + strings.Repeat("x", 80),
		},
	}
	rendered := RenderElement(el)
	if strings.Count(rendered, "…") == 0 {
		t.Fatalf("expected truncation ellipsis, got %q", rendered)
	}
}

func TestRenderElementUnknownHasNoActionHint(t *testing.T) {
	el := domtypes.Element{Index: 5, Tag: "div", Text: "plain filler"}
	rendered := RenderElement(el)
	if strings.Contains(rendered, ": ") {
		t.Fatalf("unknown classification should not add an action hint, got %q", rendered)
	}
}
