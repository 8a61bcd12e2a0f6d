// Package semantic implements the Semantic Element Analyzer: rule-based
// classification of a domtypes.Element into one of ~20 semantic types with
// a confidence and priority. Grounded in shape (not content) on the
// teacher's HeuristicClassifier (internal/agent/routing/heuristic.go):
// regex/keyword predicates scored and the highest-scoring match wins, here
// generalized to weighted per-field scoring over DOM elements instead of
// text-only request tagging.
package semantic

import "strings"

// Priority ranks a semantic Type's importance to the agent, 1 (highest) to
// 5 (lowest).
type Priority int

// Rule defines one semantic type's matching predicates and weight
// contributions, per spec.md section 4.6's weighted scoring scheme: tag
// 0.30, class 0.25, text 0.20, href 0.20, id 0.15, role 0.15, each
// attribute 0.10.
type Rule struct {
	Type          string
	Priority      Priority
	IsRecommended bool
	Description   string // emoji-tagged, decorative per spec.md section 4.6
	ActionHint    string
	Tags          []string

	Tags_Tag   []string
	ClassWords []string
	TextWords  []string
	HrefSubstr []string
	IDWords    []string
	Roles      []string
	Attrs      map[string]string // attribute name -> required value substring
}

const threshold = 0.3

// Rules is the fixed ruleset the analyzer scores every candidate against.
var Rules = []Rule{
	{
		Type: "video_content", Priority: 2, IsRecommended: true,
		Description: "🎬 video player", ActionHint: "play or inspect the video",
		Tags_Tag: []string{"video"}, ClassWords: []string{"video", "player"}, Roles: []string{"video"},
	},
	{
		Type: "play_button", Priority: 1, IsRecommended: true,
		Description: "▶️ play button", ActionHint: "click to start playback",
		ClassWords: []string{"play"}, TextWords: []string{"play"}, Roles: []string{"button"},
	},
	{
		Type: "search_input", Priority: 1, IsRecommended: true,
		Description: "🔍 search field", ActionHint: "type a query",
		Tags_Tag: []string{"input"}, Roles: []string{"searchbox"}, IDWords: []string{"search"},
		Attrs: map[string]string{"type": "search", "placeholder": "search"},
	},
	{
		Type: "advertisement", Priority: 5, IsRecommended: false,
		Description: "📢 advertisement", ActionHint: "avoid unless the task requires it",
		ClassWords: []string{"ad", "sponsor", "promo"}, IDWords: []string{"ad"},
	},
	{
		Type: "navigation_link", Priority: 3, IsRecommended: true,
		Description: "🔗 navigation link", ActionHint: "follow to navigate",
		Tags_Tag: []string{"a"}, Roles: []string{"link"}, ClassWords: []string{"nav", "menu"},
	},
	{
		Type: "submit_button", Priority: 1, IsRecommended: true,
		Description: "✅ submit button", ActionHint: "click to submit the form",
		TextWords: []string{"submit", "save", "continue", "confirm"}, Attrs: map[string]string{"type": "submit"},
	},
	{
		Type: "download_button", Priority: 2, IsRecommended: true,
		Description: "⬇️ download button", ActionHint: "click to download",
		TextWords: []string{"download"}, HrefSubstr: []string{"download"},
	},
	{
		Type: "form_field", Priority: 2, IsRecommended: true,
		Description: "📝 form field", ActionHint: "fill in the value",
		Tags_Tag: []string{"input", "textarea", "select"},
	},
	{
		Type: "article_content", Priority: 3, IsRecommended: false,
		Description: "📄 article text", ActionHint: "read or extract",
		Tags_Tag: []string{"article", "p"}, ClassWords: []string{"article", "content", "post"},
	},
	{
		Type: "login_button", Priority: 1, IsRecommended: true,
		Description: "🔐 login/sign-in button", ActionHint: "click to authenticate",
		TextWords: []string{"log in", "login", "sign in"},
	},
	{
		Type: "close_button", Priority: 2, IsRecommended: true,
		Description: "✖️ close/dismiss button", ActionHint: "click to dismiss",
		TextWords: []string{"close", "dismiss", "×"}, ClassWords: []string{"close", "dismiss"},
	},
	{
		Type: "pagination", Priority: 3, IsRecommended: true,
		Description: "📑 pagination control", ActionHint: "navigate between pages",
		ClassWords: []string{"page", "pagination"}, Roles: []string{"navigation"},
	},
	{
		Type: "cookie_consent", Priority: 1, IsRecommended: true,
		Description: "🍪 cookie consent control", ActionHint: "accept or reject cookies",
		ClassWords: []string{"cookie", "consent", "gdpr"},
	},
	{
		Type: "social_share", Priority: 4, IsRecommended: false,
		Description: "📤 social share button", ActionHint: "shares content externally",
		ClassWords: []string{"share", "social"},
	},
	{
		Type: "tab_control", Priority: 2, IsRecommended: true,
		Description: "🗂️ tab control", ActionHint: "switch tabs",
		Roles: []string{"tab"}, ClassWords: []string{"tab"},
	},
	{
		Type: "checkbox_toggle", Priority: 2, IsRecommended: true,
		Description: "☑️ checkbox/toggle", ActionHint: "toggle on or off",
		Tags_Tag: []string{"input"}, Roles: []string{"checkbox", "switch"}, Attrs: map[string]string{"type": "checkbox"},
	},
	{
		Type: "dropdown_menu", Priority: 2, IsRecommended: true,
		Description: "🔽 dropdown menu", ActionHint: "open to reveal options",
		Tags_Tag: []string{"select"}, Roles: []string{"listbox", "combobox"}, ClassWords: []string{"dropdown"},
	},
	{
		Type: "modal_dialog", Priority: 2, IsRecommended: true,
		Description: "🪟 modal dialog", ActionHint: "interact with or dismiss",
		Roles: []string{"dialog", "alertdialog"}, ClassWords: []string{"modal", "dialog"},
	},
	{
		Type: "breadcrumb", Priority: 4, IsRecommended: false,
		Description: "🍞 breadcrumb trail", ActionHint: "navigate up a hierarchy",
		ClassWords: []string{"breadcrumb"}, Roles: []string{"navigation"},
	},
	{
		Type: "captcha_challenge", Priority: 1, IsRecommended: true,
		Description: "🤖 captcha/turnstile challenge", ActionHint: "solve or bypass the challenge",
		ClassWords: []string{"captcha", "turnstile", "challenge"},
	},
}

func containsAnyFold(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func containsExact(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.EqualFold(haystack, n) {
			return true
		}
	}
	return false
}
