package pluginmgr

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/pkg/actions"
)

// Context is what Manager hands to a Plugin on invocation: the active page,
// the current location, and the Session. The agent's parameters are passed
// to Invoke separately, and no logger is carried.
type Context struct {
	Page    playwright.Page
	URL     string
	Title   string
	Session *browser.Session
}

// Result is what a Plugin returns: spec.md section 4.3's
// "{success, message?, error?, data?}".
type Result struct {
	Success bool
	Message string
	Error   string
	Data    any
}

// Plugin is the invocation contract a registered visual-effect plugin
// implements. Discovery (how a Plugin gets built) is out of scope; Manager
// only holds whatever is Registered with it.
type Plugin interface {
	Manifest() Manifest
	Invoke(ctx context.Context, pctx Context, params map[string]any) (Result, error)
}

// Manager resolves execute_plugin/create_page_effect/modify_page/
// wrap_page_iframe actions against registered Plugins. One Manager per
// Agent run, per spec.md section 6's resource model.
type Manager struct {
	mu         sync.RWMutex
	plugins    map[string]Plugin
	schemaOnce map[string]*jsonschema.Schema
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		plugins:    make(map[string]Plugin),
		schemaOnce: make(map[string]*jsonschema.Schema),
	}
}

// Register adds p to the registry, validating its Manifest first.
func (m *Manager) Register(p Plugin) error {
	manifest := p.Manifest()
	if err := manifest.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins[manifest.ID] = p
	return nil
}

// RegisteredIDs returns every plugin ID currently registered. resolve builds
// its "unknown pluginId" error from the same set via registeredIDsLocked,
// since it already holds the lock.
func (m *Manager) RegisteredIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.plugins))
	for id := range m.plugins {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) resolve(pluginID string) (Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[pluginID]
	if !ok {
		return nil, fmt.Errorf("pluginmgr: unknown plugin %q, registered: %v", pluginID, m.registeredIDsLocked())
	}
	return p, nil
}

func (m *Manager) registeredIDsLocked() []string {
	ids := make([]string, 0, len(m.plugins))
	for id := range m.plugins {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) validateParams(p Plugin, params map[string]any) error {
	manifest := p.Manifest()
	if len(manifest.ConfigSchema) == 0 {
		return nil
	}
	schema, err := m.compileSchema(manifest.ID, manifest.ConfigSchema)
	if err != nil {
		return fmt.Errorf("pluginmgr: compile schema for %q: %w", manifest.ID, err)
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("pluginmgr: encode params: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("pluginmgr: decode params: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("pluginmgr: params invalid for %q: %w", manifest.ID, err)
	}
	return nil
}

// compileSchema caches compiled jsonschema.Schema instances per plugin id,
// grounded directly on pkg/pluginsdk's compileSchema/schemaCache pattern.
func (m *Manager) compileSchema(pluginID string, raw json.RawMessage) (*jsonschema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.schemaOnce[pluginID]; ok {
		return cached, nil
	}
	compiled, err := jsonschema.CompileString(pluginID+".schema.json", string(raw))
	if err != nil {
		return nil, err
	}
	m.schemaOnce[pluginID] = compiled
	return compiled, nil
}

// Execute resolves pluginID and invokes it with params, translating the
// plugin Result into an actions.Result (execute_plugin).
func (m *Manager) Execute(ctx context.Context, pluginID string, params map[string]any) (actions.Result, error) {
	start := time.Now()
	p, err := m.resolve(pluginID)
	if err != nil {
		return actions.Fail(err, start), nil
	}
	if err := m.validateParams(p, params); err != nil {
		return actions.Fail(err, start), nil
	}
	res, err := p.Invoke(ctx, Context{}, params)
	if err != nil {
		return actions.Fail(err, start), nil
	}
	return translate(res, start), nil
}

func translate(res Result, start time.Time) actions.Result {
	if !res.Success {
		return actions.Result{
			Success: false,
			Error:   res.Error,
			Metadata: actions.Metadata{
				Duration:  time.Since(start),
				Timestamp: start,
			},
		}
	}
	out := actions.Ok(res.Message, start)
	if res.Data != nil {
		if s, ok := res.Data.(string); ok {
			out.ExtractedContent = s
		} else if b, err := json.Marshal(res.Data); err == nil {
			out.ExtractedContent = string(b)
		}
	}
	return out
}
