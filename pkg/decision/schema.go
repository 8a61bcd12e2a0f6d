package decision

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// jsonSchema is the Decision Schema from spec.md section 4.5: an object with
// required fields {thinking, evaluation_previous_goal, memory, next_goal,
// tab_decision, action}, extra properties forbidden. thinking is listed as
// required by the wire schema the model is asked to follow, even though
// decision.Output leaves it optional for Go callers that already know the
// previous evaluation.
const jsonSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["thinking", "evaluation_previous_goal", "memory", "next_goal", "tab_decision", "action"],
  "properties": {
    "thinking": {"type": "string"},
    "evaluation_previous_goal": {"type": "string"},
    "memory": {"type": "string"},
    "next_goal": {"type": "string"},
    "tab_decision": {
      "type": "object",
      "additionalProperties": false,
      "required": ["should_switch", "reason"],
      "properties": {
        "should_switch": {"type": "boolean"},
        "target_tab_id": {"type": "string"},
        "reason": {"type": "string"}
      }
    },
    "action": {
      "type": "object",
      "additionalProperties": true,
      "required": ["type"],
      "properties": {
        "type": {"type": "string"}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	compiled   *jsonschema.Schema
	compileErr error
)

// JSONSchema returns the Decision Schema's raw JSON Schema text, for
// embedding in a model request's response-schema field.
func JSONSchema() []byte {
	return []byte(jsonSchema)
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString("decision.schema.json", jsonSchema)
	})
	return compiled, compileErr
}

// ValidateSchema checks raw (a candidate AgentOutput payload, already valid
// JSON) against the Decision Schema.
func ValidateSchema(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("decision: compile schema: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decision: decode candidate: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("decision: schema validation failed: %w", err)
	}
	return nil
}

// Parse validates raw against the Decision Schema and unmarshals it into an
// Output. It does not attempt repair; callers that need leniency should run
// Repair first.
func Parse(raw []byte) (Output, error) {
	if err := ValidateSchema(raw); err != nil {
		return Output{}, err
	}
	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return Output{}, fmt.Errorf("decision: unmarshal output: %w", err)
	}
	return out, nil
}

// ParseLenient applies Repair to raw before validating and parsing it, and
// falls back to Fallback(reason) if the repaired payload still does not
// validate, per spec.md section 4.5 step (e).
func ParseLenient(raw []byte) Output {
	repaired := Repair(raw)
	out, err := Parse(repaired)
	if err != nil {
		return Fallback(fmt.Sprintf("parse failure: %v", err))
	}
	return out
}
