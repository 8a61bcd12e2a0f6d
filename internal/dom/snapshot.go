// Package dom implements the DOM Snapshotter: it evaluates an embedded
// JavaScript script inside the live page to build an indexed,
// semantically-annotated domtypes.State of every interactive, visible,
// in-viewport element, in the style of the teacher's
// BrowserTool.handleExecuteJS (Page.Evaluate, then parse the JSON result),
// but shipping a fixed algorithmic script instead of an agent-supplied one.
package dom

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

//go:embed snapshot.js
var snapshotScript string

// Options configures one snapshot call, matching spec.md section 4.1's
// script input contract.
type Options struct {
	Highlight          bool
	FocusIndex         int
	ViewportExpansion  int // px; -1 = unbounded
	DebugMode          bool
}

type rawElement struct {
	Index           int               `json:"index"`
	Tag             string            `json:"tag"`
	Text            string            `json:"text"`
	Attributes      map[string]string `json:"attributes"`
	XPath           string            `json:"xpath"`
	IsClickable     bool              `json:"is_clickable"`
	IsVisible       bool              `json:"is_visible"`
	InteractionType string            `json:"interaction_type"`
}

type rawResult struct {
	URL      string       `json:"url"`
	Title    string       `json:"title"`
	Elements []rawElement `json:"elements"`
}

// Snapshot evaluates the snapshotter script in session's active page and
// parses the result into a domtypes.State. The WeakMap-backed caches the
// script maintains (bounding rects, computed style, xpath) live only for
// the duration of this one Evaluate call. Go holds no reference to them, so
// they are discarded the instant the script returns, which is the Go
// analogue of a WeakMap whose only referrer just went out of scope.
func Snapshot(session *browser.Session, opts Options) (*domtypes.State, error) {
	raw, err := session.ExecuteScript(snapshotScript, map[string]any{
		"highlight":         opts.Highlight,
		"focusIndex":        opts.FocusIndex,
		"viewportExpansion": opts.ViewportExpansion,
		"debugMode":         opts.DebugMode,
	})
	if err != nil {
		return nil, fmt.Errorf("dom: evaluate snapshot script: %w", err)
	}

	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("dom: snapshot script returned %T, want string", raw)
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("dom: decode snapshot result: %w", err)
	}

	state := &domtypes.State{
		URL:        parsed.URL,
		Title:      parsed.Title,
		ProducedAt: time.Now(),
		Elements:   make([]domtypes.Element, 0, len(parsed.Elements)),
	}
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
		return nil, fmt.Errorf("dom: snapshot violated invariants: %w", err)
	}
	return state, nil
}
