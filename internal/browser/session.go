package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// contextDestroyedPatterns are the driver error substrings spec.md section
// 4.2 requires Session to treat as a navigation signal rather than a
// failure.
var contextDestroyedPatterns = []string{
	"Execution context was destroyed",
	"Cannot find context with specified id",
	"Protocol error",
}

func isContextDestroyed(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range contextDestroyedPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Session exposes a stable capability set over one pooled browser Instance,
// hiding locator-fallback details from the Controller. A failed primitive is
// not retried. Click, TypeText and PressKey do not re-raise
// execution-context-destruction errors: they report navigationDetected=true
// instead of an error. Every other method returns the driver error as is.
type Session struct {
	tabs   []*Instance
	active int
}

// NewSession launches a browser Instance from pool and wraps it. The
// Instance is owned by this Session for its entire lifetime; Close tears
// it down rather than returning it to pool for reuse, per spec.md section
// 5's one-session-per-run model.
func NewSession(ctx context.Context, pool *Pool) (*Session, error) {
	instance, err := pool.NewInstance(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser: acquire session: %w", err)
	}
	return &Session{tabs: []*Instance{instance}, active: 0}, nil
}

// Close tears down every tab page and the shared browser context/browser
// they run in. Only tabs[0] (the root Instance) owns the Context and
// Browser; tabs opened via NewTab share them and close only their own
// Page.
func (s *Session) Close() {
	for _, tab := range s.tabs[1:] {
		tab.cleanup()
	}
	if len(s.tabs) > 0 {
		s.tabs[0].cleanupRoot()
	}
}

// Page returns the active tab's Playwright page.
func (s *Session) Page() playwright.Page {
	return s.tabs[s.active].Page
}

// Locator describes the fallback chain click/type/hover/select/upload_file/
// drag_drop try in order: index-resolved xpath, xpath, css, role+text,
// attribute match.
type Locator struct {
	Index      int
	IndexXPath string // xpath resolved from the DOM snapshot for Index, if known
	XPath      string
	CSS        string
	Role       string
	Text       string
	Attributes map[string]string
}

// resolve tries each non-empty locator field in fallback order and returns
// the first Playwright locator that matches at least one element.
func (s *Session) resolve(l Locator) (playwright.Locator, error) {
	page := s.Page()
	candidates := make([]playwright.Locator, 0, 5)
	if l.IndexXPath != "" {
		candidates = append(candidates, page.Locator("xpath="+l.IndexXPath))
	}
	if l.XPath != "" {
		candidates = append(candidates, page.Locator("xpath="+l.XPath))
	}
	if l.CSS != "" {
		candidates = append(candidates, page.Locator(l.CSS))
	}
	if l.Role != "" && l.Text != "" {
		candidates = append(candidates, page.GetByRole(playwright.AriaRole(l.Role), playwright.PageGetByRoleOptions{Name: l.Text}))
	}
	for attr, val := range l.Attributes {
		candidates = append(candidates, page.Locator(fmt.Sprintf("[%s=%q]", attr, val)))
	}

	var lastErr error
	for _, candidate := range candidates {
		count, err := candidate.Count()
		if err != nil {
			lastErr = err
			continue
		}
		if count > 0 {
			return candidate.First(), nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("browser: no locator matched for index %d", l.Index)
}

// Click clicks the element resolved by l. navigationDetected reports
// whether the click destroyed the execution context.
func (s *Session) Click(l Locator) (navigationDetected bool, err error) {
	loc, err := s.resolve(l)
	if err != nil {
		return false, err
	}
	if err := loc.Click(); err != nil {
		if isContextDestroyed(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// TypeText fills text into the element resolved by l.
func (s *Session) TypeText(l Locator, text string) (navigationDetected bool, err error) {
	loc, err := s.resolve(l)
	if err != nil {
		return false, err
	}
	if err := loc.Fill(text); err != nil {
		if isContextDestroyed(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Hover hovers over the element resolved by l.
func (s *Session) Hover(l Locator) error {
	loc, err := s.resolve(l)
	if err != nil {
		return err
	}
	return loc.Hover()
}

// Select chooses value in the <select> element resolved by l.
func (s *Session) Select(l Locator, value string) error {
	loc, err := s.resolve(l)
	if err != nil {
		return err
	}
	_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return err
}

// UploadFile sets the file input resolved by l to path.
func (s *Session) UploadFile(l Locator, path string) error {
	loc, err := s.resolve(l)
	if err != nil {
		return err
	}
	return loc.SetInputFiles([]string{path})
}

// DragDrop drags from the element resolved by from to the element resolved
// by to.
func (s *Session) DragDrop(from, to Locator) error {
	fromLoc, err := s.resolve(from)
	if err != nil {
		return err
	}
	toLoc, err := s.resolve(to)
	if err != nil {
		return err
	}
	return fromLoc.DragTo(toLoc)
}

// PressKey dispatches a key press with optional modifiers on the active
// page, reporting navigationDetected if the key press (e.g. a form submit
// Enter) destroyed the execution context.
func (s *Session) PressKey(key string, modifiers []string) (navigationDetected bool, err error) {
	combo := key
	if len(modifiers) > 0 {
		combo = strings.Join(modifiers, "+") + "+" + key
	}
	if err := s.Page().Keyboard().Press(combo); err != nil {
		if isContextDestroyed(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Scroll scrolls the active page by amount pixels in direction ("up"/"down").
func (s *Session) Scroll(direction string, amount int) error {
	delta := amount
	if direction == "up" {
		delta = -amount
	}
	_, err := s.Page().Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", delta))
	return err
}

// Navigate goes to url, waiting for DOMContentLoaded.
func (s *Session) Navigate(ctx context.Context, url string) error {
	_, err := s.Page().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

// GoBack, GoForward, Refresh implement the navigation-history ops.
func (s *Session) GoBack() error {
	_, err := s.Page().GoBack()
	return err
}

func (s *Session) GoForward() error {
	_, err := s.Page().GoForward()
	return err
}

func (s *Session) Refresh() error {
	_, err := s.Page().Reload()
	return err
}

// WaitForNavigation blocks until the load state waitUntil is reached or
// timeout elapses.
func (s *Session) WaitForNavigation(timeout time.Duration, waitUntil string) error {
	state := playwright.LoadStateLoad
	switch waitUntil {
	case "domcontentloaded":
		state = playwright.LoadStateDomcontentloaded
	case "networkidle":
		state = playwright.LoadStateNetworkidle
	}
	return s.Page().WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// WaitForElement blocks until selector reaches state ("visible"/"attached"/
// "hidden"/"detached") or timeout elapses.
func (s *Session) WaitForElement(selector string, timeout time.Duration, state string) error {
	waitState := playwright.WaitForSelectorStateVisible
	switch state {
	case "attached":
		waitState = playwright.WaitForSelectorStateAttached
	case "hidden":
		waitState = playwright.WaitForSelectorStateHidden
	case "detached":
		waitState = playwright.WaitForSelectorStateDetached
	}
	_, err := s.Page().WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   waitState,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

// Screenshot captures the active page as PNG bytes: the viewport, or the
// full scrollable page when fullPage is true.
func (s *Session) Screenshot(fullPage bool) ([]byte, error) {
	return s.Page().Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(fullPage)})
}

// ExtractText returns the visible text content of the active page, or of
// selector if non-empty.
func (s *Session) ExtractText(selector string) (string, error) {
	if selector == "" {
		return s.Page().TextContent("body")
	}
	return s.Page().TextContent(selector)
}

// ExtractHTML returns the serialized HTML of the active page.
func (s *Session) ExtractHTML() (string, error) {
	return s.Page().Content()
}

// ExecuteScript evaluates script with args in the page context.
func (s *Session) ExecuteScript(script string, args ...any) (any, error) {
	return s.Page().Evaluate(script, args...)
}

// SetCookie sets a single cookie on the active context.
func (s *Session) SetCookie(name, value, domain, path string, secure, httpOnly bool) error {
	return s.tabs[s.active].Context.AddCookies([]playwright.OptionalCookie{{
		Name:     name,
		Value:    value,
		Domain:   playwright.String(domain),
		Path:     playwright.String(path),
		Secure:   playwright.Bool(secure),
		HttpOnly: playwright.Bool(httpOnly),
	}})
}

// TabInfo describes one open tab for switch_tab/new_tab decisions.
type TabInfo struct {
	ID     string
	URL    string
	Title  string
	Active bool
}

// AllTabsInfo returns metadata for every open tab.
func (s *Session) AllTabsInfo() []TabInfo {
	infos := make([]TabInfo, 0, len(s.tabs))
	for i, tab := range s.tabs {
		title, _ := tab.Page.Title()
		infos = append(infos, TabInfo{
			ID:     tab.ID,
			URL:    tab.Page.URL(),
			Title:  title,
			Active: i == s.active,
		})
	}
	return infos
}

// NewTab opens a fresh tab in the session's browser context and makes it
// active, returning its ID.
func (s *Session) NewTab() (string, error) {
	page, err := s.tabs[0].Context.NewPage()
	if err != nil {
		return "", fmt.Errorf("browser: open new tab: %w", err)
	}
	id := fmt.Sprintf("tab-%d", time.Now().UnixNano())
	s.tabs = append(s.tabs, &Instance{
		Browser: s.tabs[0].Browser,
		Context: s.tabs[0].Context,
		Page:    page,
		ID:      id,
	})
	s.active = len(s.tabs) - 1
	return id, nil
}

// SwitchTab makes the tab with the given ID active.
func (s *Session) SwitchTab(id string) error {
	for i, tab := range s.tabs {
		if tab.ID == id {
			s.active = i
			return nil
		}
	}
	return fmt.Errorf("browser: no tab with id %q", id)
}

// CloseTab closes the tab with the given ID. Closing the active tab falls
// back to tab 0.
func (s *Session) CloseTab(id string) error {
	for i, tab := range s.tabs {
		if tab.ID == id {
			if err := tab.Page.Close(); err != nil {
				return err
			}
			s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
			switch {
			case i == s.active || s.active >= len(s.tabs):
				s.active = 0
			case i < s.active:
				s.active--
			}
			return nil
		}
	}
	return fmt.Errorf("browser: no tab with id %q", id)
}

// URL and Title report the active page's current location.
func (s *Session) URL() string { return s.Page().URL() }

func (s *Session) Title() string {
	title, _ := s.Page().Title()
	return title
}
