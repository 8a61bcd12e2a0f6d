package messagemgr

import (
	"fmt"
	"strings"

	"github.com/wrenlab/pilot/internal/semantic"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

// curatedAttributes is the subset of attributes spec.md section 4.7 allows
// into rendered element text, beyond href (truncated separately) and class
// (filtered separately).
var curatedAttributes = []string{"type", "name", "role", "aria-label", "placeholder", "title", "value"}

// truncateLen returns the default text-truncation length for semantic type
// t, per spec.md section 4.7: default 30, 120 for video_content, 60 for
// navigation_link.
func truncateLen(t string) int {
	switch t {
	case "video_content":
		return 120
	case "navigation_link":
		return 60
	default:
		return 30
	}
}

func truncateText(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// filteredClassTokens drops empty/whitespace-only class tokens and returns
// the rest space-joined.
func filteredClassTokens(raw string) string {
	fields := strings.Fields(raw)
	return strings.Join(fields, " ")
}

// RenderElement renders el as `[index] <tag attr="…" …>text…/>` with an
// optional semantic emoji+type prefix and action-hint postfix, per
// spec.md section 4.7. The semantic classification is purely decorative:
// RenderElement never hides or reorders elements based on it.
func RenderElement(el domtypes.Element) string {
	class := semantic.Classify(el)

	var attrs strings.Builder
	for _, key := range curatedAttributes {
		if val, ok := el.Attributes[key]; ok && val != "" {
			fmt.Fprintf(&attrs, " %s=%q", key, val)
		}
	}
	if href, ok := el.Attributes["href"]; ok && href != "" {
		fmt.Fprintf(&attrs, " href=%q", truncateText(href, 40))
	}
	if classAttr, ok := el.Attributes["class"]; ok {
		if filtered := filteredClassTokens(classAttr); filtered != "" {
			fmt.Fprintf(&attrs, " class=%q", filtered)
		}
	}

	text := truncateText(el.Text, truncateLen(class.Type))

	prefix := ""
	if class.Type != "unknown" {
		prefix = class.Description + " "
	}

	line := fmt.Sprintf("%s[%d] <%s%s>%s/>", prefix, el.Index, el.Tag, attrs.String(), text)
	if class.Type != "unknown" && class.ActionHint != "" {
		line += ": " + class.ActionHint
	}
	return line
}
