// Package pluginmgr implements the Plugin Manager: invocation of registered
// visual-effect plugins behind the execute_plugin/create_page_effect/
// modify_page/wrap_page_iframe actions. Plugin discovery mechanics are
// deliberately out of scope per spec.md section 1. Manager only resolves
// plugins already registered with it.
//
// Grounded on the teacher's pkg/pluginsdk: Manifest shape and
// schema-validated config carry over almost unchanged, since the teacher's
// plugin system and this one solve the identical "validate a third party's
// declared config against its own schema" problem.
package pluginmgr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Manifest describes a registered plugin and its parameter schema.
type Manifest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	Version      string          `json:"version,omitempty"`
	ConfigSchema json.RawMessage `json:"config_schema"`
}

// Validate checks the manifest invariants Manager.Register enforces.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("pluginmgr: manifest is nil")
	}
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("pluginmgr: manifest id is required")
	}
	return nil
}
