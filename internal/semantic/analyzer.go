package semantic

import (
	"strings"

	"github.com/wrenlab/pilot/pkg/domtypes"
)

// Classification is the analyzer's verdict for one Element: decorative
// metadata the message manager folds into prompt text. The agent's
// decisions depend only on the indexed element list, never on this, per
// spec.md section 4.6: Classification only enriches prompt text for model
// comprehension.
type Classification struct {
	Type          string
	Priority      Priority
	Confidence    float64
	IsRecommended bool
	Description   string
	ActionHint    string
	Tags          []string
}

// unknown is returned when no rule clears threshold, per spec.md
// section 4.6: "type=unknown, priority=medium, confidence=0.3".
var unknownClassification = Classification{
	Type: "unknown", Priority: 3, Confidence: 0.3,
}

// Classify scores el against every Rule and returns the Classification of
// the highest-scoring rule that clears threshold, or unknownClassification
// if none does.
func Classify(el domtypes.Element) Classification {
	var best Rule
	bestScore := 0.0

	for _, rule := range Rules {
		score := score(rule, el)
		if score > bestScore {
			bestScore = score
			best = rule
		}
	}

	if bestScore < threshold {
		return unknownClassification
	}

	return Classification{
		Type:          best.Type,
		Priority:      best.Priority,
		Confidence:    clampConfidence(bestScore),
		IsRecommended: best.IsRecommended,
		Description:   best.Description,
		ActionHint:    best.ActionHint,
		Tags:          best.Tags,
	}
}

func clampConfidence(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	return score
}

// score sums weighted matches per spec.md section 4.6's per-field weights:
// tag 0.30, class 0.25, text 0.20, href 0.20, id 0.15, role 0.15, each
// attribute 0.10.
func score(rule Rule, el domtypes.Element) float64 {
	var total float64

	if containsExact(el.Tag, rule.Tags_Tag) {
		total += 0.30
	}
	if class := el.Attributes["class"]; containsAnyFold(class, rule.ClassWords) {
		total += 0.25
	}
	if containsAnyFold(el.Text, rule.TextWords) {
		total += 0.20
	}
	if href := el.Attributes["href"]; containsAnyFold(href, rule.HrefSubstr) {
		total += 0.20
	}
	if id := el.Attributes["id"]; containsAnyFold(id, rule.IDWords) {
		total += 0.15
	}
	if role := el.Attributes["role"]; containsExact(role, rule.Roles) {
		total += 0.15
	}
	for attr, want := range rule.Attrs {
		if val, ok := el.Attributes[attr]; ok && strings.Contains(strings.ToLower(val), strings.ToLower(want)) {
			total += 0.10
		}
	}

	return total
}
