package pluginmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/pkg/actions"
)

// CreatePageEffect resolves pluginID and invokes it with a Context carrying
// session, for plugins that paint a visual effect onto the live page rather
// than just returning data.
func (m *Manager) CreatePageEffect(ctx context.Context, session *browser.Session, pluginID string, params map[string]any) (actions.Result, error) {
	start := time.Now()
	p, err := m.resolve(pluginID)
	if err != nil {
		return actions.Fail(err, start), nil
	}
	if err := m.validateParams(p, params); err != nil {
		return actions.Fail(err, start), nil
	}
	pctx := Context{Page: session.Page(), URL: session.URL(), Title: session.Title(), Session: session}
	res, err := p.Invoke(ctx, pctx, params)
	if err != nil {
		return actions.Fail(err, start), nil
	}
	return translate(res, start), nil
}

// wrapScript builds the three fixed-position layers (background, overlay,
// interaction) spec.md section 4.3 requires when preserveOriginal=true:
// the original page content is moved into a background iframe so plugin
// elements painted above it never perturb the original layout.
const wrapScript = `(() => {
  if (document.getElementById('__pilot_wrap_root__')) return true;
  const original = document.body.innerHTML;
  document.body.innerHTML = '';
  const root = document.createElement('div');
  root.id = '__pilot_wrap_root__';
  root.style.cssText = 'position:fixed;inset:0;';

  const background = document.createElement('iframe');
  background.id = '__pilot_layer_background__';
  background.style.cssText = 'position:absolute;inset:0;border:0;width:100%;height:100%;z-index:0';

  const overlay = document.createElement('div');
  overlay.id = '__pilot_layer_overlay__';
  overlay.style.cssText = 'position:absolute;inset:0;z-index:1;pointer-events:none';

  const interaction = document.createElement('div');
  interaction.id = '__pilot_layer_interaction__';
  interaction.style.cssText = 'position:absolute;inset:0;z-index:2';

  root.appendChild(background);
  root.appendChild(overlay);
  root.appendChild(interaction);
  document.body.appendChild(root);

  background.addEventListener('load', () => {
    background.contentDocument.open();
    background.contentDocument.write('<!doctype html><html><body>' + original + '</body></html>');
    background.contentDocument.close();
  });
  background.src = 'about:blank';
  return true;
})()`

// WrapPageIframe wraps the current page in the three-layer iframe structure
// so a plugin identified by pluginID can paint into the interaction layer
// without disturbing the original page.
func (m *Manager) WrapPageIframe(ctx context.Context, session *browser.Session, pluginID string, params map[string]any) (actions.Result, error) {
	start := time.Now()
	if _, err := session.ExecuteScript(wrapScript); err != nil {
		return actions.Fail(fmt.Errorf("pluginmgr: wrap page iframe: %w", err), start), nil
	}
	if pluginID == "" {
		return actions.Ok("wrapped page in iframe layers", start), nil
	}
	return m.CreatePageEffect(ctx, session, pluginID, params)
}

func positionScript(mod actions.DOMModification, selector string) string {
	switch mod.Position {
	case "before":
		return fmt.Sprintf("document.querySelector(%q).insertAdjacentHTML('beforebegin', %q)", selector, mod.Content)
	case "after":
		return fmt.Sprintf("document.querySelector(%q).insertAdjacentHTML('afterend', %q)", selector, mod.Content)
	case "replace":
		return fmt.Sprintf("document.querySelector(%q).outerHTML = %q", selector, mod.Content)
	case "afterBegin":
		return fmt.Sprintf("document.querySelector(%q).insertAdjacentHTML('afterbegin', %q)", selector, mod.Content)
	default: // "inside"
		return fmt.Sprintf("document.querySelector(%q).insertAdjacentHTML('beforeend', %q)", selector, mod.Content)
	}
}

// ModifyPage applies a sequence of DOM create/modify/delete steps directly
// via script evaluation; no plugin resolution is needed since the
// modifications themselves are the payload. When preserveOriginal is true
// the page is wrapped first (see wrapScript); each step's selector is then
// looked up with document.querySelector in the top-level document, not in
// the background iframe that now holds the original content.
func (m *Manager) ModifyPage(ctx context.Context, session *browser.Session, mods []actions.DOMModification, preserveOriginal bool) (actions.Result, error) {
	start := time.Now()

	if preserveOriginal {
		if _, err := session.ExecuteScript(wrapScript); err != nil {
			return actions.Fail(fmt.Errorf("pluginmgr: preserve original: %w", err), start), nil
		}
	}

	for _, mod := range mods {
		selector := mod.Selector
		if selector == "" && mod.XPath != "" {
			selector = fmt.Sprintf("xpath=%s", mod.XPath)
		}
		var script string
		switch mod.Op {
		case "delete":
			script = fmt.Sprintf("document.querySelector(%q)?.remove()", selector)
		case "modify":
			script = fmt.Sprintf("Object.assign(document.querySelector(%q).style, %s)", selector, styleObjectLiteral(mod.Styles))
		default: // "create"
			script = positionScript(mod, selector)
		}
		if _, err := session.ExecuteScript(script); err != nil {
			return actions.Fail(fmt.Errorf("pluginmgr: apply modification %+v: %w", mod, err), start), nil
		}
	}

	return actions.Ok(fmt.Sprintf("applied %d DOM modification(s)", len(mods)), start), nil
}

func styleObjectLiteral(styles map[string]string) string {
	if len(styles) == 0 {
		return "{}"
	}
	out := "{"
	first := true
	for k, v := range styles {
		if !first {
			out += ","
		}
		out += fmt.Sprintf("%q:%q", k, v)
		first = false
	}
	return out + "}"
}
