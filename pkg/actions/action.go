// Package actions defines the Action tagged union the agent loop emits and
// the Controller dispatches, plus the ActionResult every dispatch produces.
package actions

// Type enumerates every action variant the Controller can dispatch.
type Type string

const (
	Click              Type = "click"
	Type_              Type = "type" // trailing underscore: the name Type is already this package's Type type
	Navigate           Type = "navigate"
	Scroll             Type = "scroll"
	Wait               Type = "wait"
	Done               Type = "done"
	Hover              Type = "hover"
	DragDrop           Type = "drag_drop"
	KeyPress           Type = "key_press"
	Select             Type = "select"
	UploadFile         Type = "upload_file"
	TakeScreenshot     Type = "take_screenshot"
	ExtractData        Type = "extract_data"
	ExecuteScript      Type = "execute_script"
	SwitchTab          Type = "switch_tab"
	NewTab             Type = "new_tab"
	CloseTab           Type = "close_tab"
	GoBack             Type = "go_back"
	GoForward          Type = "go_forward"
	Refresh            Type = "refresh"
	SetCookie          Type = "set_cookie"
	WaitForElement     Type = "wait_for_element"
	WaitForNavigation  Type = "wait_for_navigation"
	ExecutePlugin      Type = "execute_plugin"
	CreatePageEffect   Type = "create_page_effect"
	ModifyPage         Type = "modify_page"
	WrapPageIframe     Type = "wrap_page_iframe"
)

// ScrollDirection enumerates the two directions Scroll accepts.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

// Cookie mirrors the subset of a browser cookie SetCookie needs to set.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
}

// DOMModification describes one create/modify/delete step of a modify_page
// action, per spec section 4.3.
type DOMModification struct {
	Op       string            `json:"op"` // create | modify | delete
	Selector string            `json:"selector,omitempty"`
	XPath    string            `json:"xpath,omitempty"`
	Position string            `json:"position,omitempty"` // before | after | inside | replace | afterBegin
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Styles   map[string]string `json:"styles,omitempty"`
	Content  string            `json:"content,omitempty"`
}

// Action is a tagged variant: Type selects which of the typed payload
// fields below are meaningful. Every branch the Controller dispatches on is
// represented here so its switch can be kept exhaustive; see
// controller.Dispatch for the matching switch.
type Action struct {
	Type Type `json:"type"`

	// Element locator fields, used by click/type/hover/select/upload_file/
	// drag_drop/wait_for_element as fallback locators beyond Index.
	Index      int               `json:"index,omitempty"`
	XPath      string            `json:"xpath,omitempty"`
	CSSSelector string           `json:"css_selector,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`

	URL             string          `json:"url,omitempty"`
	Direction       ScrollDirection `json:"direction,omitempty"`
	Amount          int             `json:"amount,omitempty"`
	Seconds         float64         `json:"seconds,omitempty"`
	Message         string          `json:"message,omitempty"`
	Success         bool            `json:"success,omitempty"`
	Key             string          `json:"key,omitempty"`
	Modifiers       []string        `json:"modifiers,omitempty"`
	TargetIndex     int             `json:"target_index,omitempty"` // drag_drop destination
	SelectValue     string          `json:"select_value,omitempty"`
	FilePath        string          `json:"file_path,omitempty"`
	Script          string          `json:"script,omitempty"`
	ScriptArgs      []any           `json:"script_args,omitempty"`
	TabID           string          `json:"tab_id,omitempty"`
	TabIndex        int             `json:"tab_index,omitempty"`
	Cookie          *Cookie         `json:"cookie,omitempty"`
	Timeout         float64         `json:"timeout,omitempty"`
	WaitUntil       string          `json:"wait_until,omitempty"`
	WaitState       string          `json:"wait_state,omitempty"`
	PluginID        string          `json:"plugin_id,omitempty"`
	PluginParams    map[string]any  `json:"plugin_parameters,omitempty"`
	Modifications   []DOMModification `json:"modifications,omitempty"`
	PreserveOriginal bool           `json:"preserve_original,omitempty"`
}

// Equal implements the per-type equality spec.md section 4.5.1 requires for
// loop detection: click -> same index, type -> same index and text,
// navigate -> same url, scroll -> same direction, wait -> same seconds;
// also hover -> same index, key_press -> same key, select -> same index and
// value. Every other action type never compares equal, even to an identical
// action, so it never counts toward identical-action repetition.
func (a Action) Equal(other Action) bool {
	if a.Type != other.Type {
		return false
	}
	switch a.Type {
	case Click, Hover:
		return a.Index == other.Index
	case Type_:
		return a.Index == other.Index && a.Text == other.Text
	case Navigate:
		return a.URL == other.URL
	case Scroll:
		return a.Direction == other.Direction
	case Wait:
		return a.Seconds == other.Seconds
	case KeyPress:
		return a.Key == other.Key
	case Select:
		return a.Index == other.Index && a.SelectValue == other.SelectValue
	default:
		return false
	}
}
