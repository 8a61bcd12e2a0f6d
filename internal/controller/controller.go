// Package controller implements the Action Dispatcher: it maps the
// abstract actions.Action tagged union onto internal/browser.Session calls
// and classifies failures, grounded on the teacher's
// internal/tools/browser/browser.go Execute switch generalized from nine
// actions to the full set in spec.md section 3.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/internal/dom"
	"github.com/wrenlab/pilot/pkg/actions"
	"github.com/wrenlab/pilot/pkg/domtypes"
)

// PluginExecutor is the invocation contract plugin-forwarding actions
// (execute_plugin, create_page_effect, modify_page, wrap_page_iframe) call
// into. internal/pluginmgr.Manager implements this.
type PluginExecutor interface {
	Execute(ctx context.Context, pluginID string, params map[string]any) (actions.Result, error)
	CreatePageEffect(ctx context.Context, session *browser.Session, pluginID string, params map[string]any) (actions.Result, error)
	ModifyPage(ctx context.Context, session *browser.Session, mods []actions.DOMModification, preserveOriginal bool) (actions.Result, error)
	WrapPageIframe(ctx context.Context, session *browser.Session, pluginID string, params map[string]any) (actions.Result, error)
}

// Controller dispatches Actions against a Session it does not own. The
// Agent retains Session's lifecycle; Controller only holds a back-reference,
// matching spec.md section 3's ownership rule.
type Controller struct {
	session *browser.Session
	plugins PluginExecutor
}

// New builds a Controller over session. plugins may be nil if no plugin
// actions will be dispatched.
func New(session *browser.Session, plugins PluginExecutor) *Controller {
	return &Controller{session: session, plugins: plugins}
}

// DOMState asks Session for a fresh snapshot, per spec.md section 2's data
// flow: "Controller asks Session for snapshot".
func (c *Controller) DOMState(opts dom.Options) (*domtypes.State, error) {
	return dom.Snapshot(c.session, opts)
}

// Screenshot captures the active page as a full-page PNG, used by the agent
// loop's vision step independent of any dispatched take_screenshot action.
func (c *Controller) Screenshot() ([]byte, error) {
	return c.session.Screenshot(true)
}

// Tabs reports every open tab, for the agent loop's per-step tab gathering.
func (c *Controller) Tabs() []browser.TabInfo {
	return c.session.AllTabsInfo()
}

func locatorFrom(a actions.Action) browser.Locator {
	l := browser.Locator{
		Index:      a.Index,
		XPath:      a.XPath,
		CSS:        a.CSSSelector,
		Text:       a.Text,
		Attributes: a.Attributes,
	}
	// Index locates by the snapshot's data-snapshot-index attribute, and only
	// when no other locator is given, since an omitted index reads as 0.
	if a.XPath == "" && a.CSSSelector == "" && len(a.Attributes) == 0 {
		l.IndexXPath = indexXPath(a.Index)
	}
	return l
}

func indexXPath(index int) string {
	return fmt.Sprintf(`//*[@data-snapshot-index="%d"]`, index)
}

// Dispatch executes a, returning an ActionResult. Dispatch has no error
// return. Per spec.md section 7's propagation rule, every dispatch failure,
// including an unrecognized action.Type, is translated into
// Result{Success:false, Error, ...}.
func (c *Controller) Dispatch(ctx context.Context, a actions.Action) actions.Result {
	start := time.Now()

	switch a.Type {
	case actions.Click:
		navigated, err := c.session.Click(locatorFrom(a))
		return finish(a, start, navigated, "clicked element", err)

	case actions.Type_:
		navigated, err := c.session.TypeText(locatorFrom(a), a.Text)
		return finish(a, start, navigated, "typed text into element", err)

	case actions.Hover:
		err := c.session.Hover(locatorFrom(a))
		return finish(a, start, false, "hovered over element", err)

	case actions.Select:
		err := c.session.Select(locatorFrom(a), a.SelectValue)
		return finish(a, start, false, "selected option", err)

	case actions.UploadFile:
		err := c.session.UploadFile(locatorFrom(a), a.FilePath)
		return finish(a, start, false, "uploaded file", err)

	case actions.DragDrop:
		from := locatorFrom(a)
		to := browser.Locator{Index: a.TargetIndex, IndexXPath: indexXPath(a.TargetIndex)}
		err := c.session.DragDrop(from, to)
		return finish(a, start, false, "dragged element", err)

	case actions.KeyPress:
		navigated, err := c.session.PressKey(a.Key, a.Modifiers)
		return finish(a, start, navigated, "pressed key", err)

	case actions.Scroll:
		err := c.session.Scroll(string(a.Direction), nonZero(a.Amount, 500))
		return finish(a, start, false, "scrolled page", err)

	case actions.Wait:
		seconds := a.Seconds
		if seconds <= 0 {
			seconds = 1
		}
		select {
		case <-time.After(time.Duration(seconds * float64(time.Second))):
		case <-ctx.Done():
			return fail(start, ctx.Err())
		}
		return ok(start, fmt.Sprintf("waited %.1fs", seconds))

	case actions.Navigate:
		err := c.session.Navigate(ctx, a.URL)
		return finish(a, start, false, "navigated to "+a.URL, err)

	case actions.GoBack:
		return finish(a, start, false, "went back", c.session.GoBack())

	case actions.GoForward:
		return finish(a, start, false, "went forward", c.session.GoForward())

	case actions.Refresh:
		return finish(a, start, false, "refreshed page", c.session.Refresh())

	case actions.WaitForNavigation:
		timeout := durationOrDefault(a.Timeout, 30*time.Second)
		err := c.session.WaitForNavigation(timeout, a.WaitUntil)
		return finish(a, start, false, "navigation settled", err)

	case actions.WaitForElement:
		timeout := durationOrDefault(a.Timeout, 30*time.Second)
		state := a.WaitState
		if state == "" {
			state = "visible"
		}
		selector := a.CSSSelector
		err := c.session.WaitForElement(selector, timeout, state)
		return finish(a, start, false, "element reached state "+state, err)

	case actions.TakeScreenshot:
		shot, err := c.session.Screenshot(true)
		if err != nil {
			return fail(start, err)
		}
		res := ok(start, "captured screenshot")
		res.Screenshot = shot
		return res

	case actions.ExtractData:
		selector := a.CSSSelector
		content, err := c.session.ExtractText(selector)
		if err != nil {
			return fail(start, err)
		}
		res := ok(start, "extracted content")
		res.ExtractedContent = content
		return res

	case actions.ExecuteScript:
		result, err := c.session.ExecuteScript(a.Script, a.ScriptArgs...)
		if err != nil {
			return fail(start, err)
		}
		res := ok(start, "executed script")
		res.ExtractedContent = fmt.Sprintf("%v", result)
		return res

	case actions.NewTab:
		id, err := c.session.NewTab()
		if err != nil {
			return fail(start, err)
		}
		res := ok(start, "opened new tab")
		res.ExtractedContent = id
		return res

	case actions.SwitchTab:
		return finish(a, start, false, "switched tab", c.session.SwitchTab(a.TabID))

	case actions.CloseTab:
		return finish(a, start, false, "closed tab", c.session.CloseTab(a.TabID))

	case actions.SetCookie:
		if a.Cookie == nil {
			return fail(start, fmt.Errorf("set_cookie action missing cookie payload"))
		}
		err := c.session.SetCookie(a.Cookie.Name, a.Cookie.Value, a.Cookie.Domain, a.Cookie.Path, a.Cookie.Secure, a.Cookie.HTTPOnly)
		return finish(a, start, false, "set cookie", err)

	case actions.Done:
		res := ok(start, a.Message)
		res.Success = a.Success
		return res

	case actions.ExecutePlugin:
		if c.plugins == nil {
			return fail(start, fmt.Errorf("no plugin executor configured"))
		}
		res, err := c.plugins.Execute(ctx, a.PluginID, a.PluginParams)
		if err != nil {
			return fail(start, err)
		}
		return stampMetadata(res, start)

	case actions.CreatePageEffect:
		if c.plugins == nil {
			return fail(start, fmt.Errorf("no plugin executor configured"))
		}
		res, err := c.plugins.CreatePageEffect(ctx, c.session, a.PluginID, a.PluginParams)
		if err != nil {
			return fail(start, err)
		}
		return stampMetadata(res, start)

	case actions.ModifyPage:
		if c.plugins == nil {
			return fail(start, fmt.Errorf("no plugin executor configured"))
		}
		res, err := c.plugins.ModifyPage(ctx, c.session, a.Modifications, a.PreserveOriginal)
		if err != nil {
			return fail(start, err)
		}
		return stampMetadata(res, start)

	case actions.WrapPageIframe:
		if c.plugins == nil {
			return fail(start, fmt.Errorf("no plugin executor configured"))
		}
		res, err := c.plugins.WrapPageIframe(ctx, c.session, a.PluginID, a.PluginParams)
		if err != nil {
			return fail(start, err)
		}
		return stampMetadata(res, start)

	default:
		return fail(start, fmt.Errorf("controller: unknown action type %q", a.Type))
	}
}

// finish translates a driver err into an ActionResult: context-destruction
// is already resolved to navigated by Session, so a nil err here always
// means the action itself succeeded; navigated communicates whether it
// also triggered navigation.
func finish(a actions.Action, start time.Time, navigated bool, successMsg string, err error) actions.Result {
	if err != nil {
		return fail(start, err)
	}
	res := ok(start, successMsg)
	res.NavigationDetected = navigated
	return res
}

func ok(start time.Time, message string) actions.Result {
	return actions.Result{
		Success: true,
		Message: message,
		Metadata: actions.Metadata{
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}
}

func fail(start time.Time, err error) actions.Result {
	kind, hint := Classify(err)
	if kind == KindNavigation {
		return actions.Result{
			Success:            true,
			NavigationDetected: true,
			Message:            "navigation interrupted the action: " + err.Error(),
			Metadata: actions.Metadata{
				Duration:  time.Since(start),
				Timestamp: start,
			},
		}
	}
	return actions.Result{
		Success: false,
		Error:   fmt.Sprintf("%v (%s)", err, hint),
		Metadata: actions.Metadata{
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}
}

func stampMetadata(res actions.Result, start time.Time) actions.Result {
	res.Metadata.Duration = time.Since(start)
	res.Metadata.Timestamp = start
	return res
}

func nonZero(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func durationOrDefault(seconds float64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}
