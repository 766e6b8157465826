package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrToolExecutorNotRegistered     = errors.New("tool executor not registered")
	ErrToolDefinitionInvalid         = errors.New("tool definition invalid")
	ErrToolValidationFailed          = errors.New("tool params validation failed")
)

const defaultInputSchema = `{"type":"object","additionalProperties":false,"properties":{}}`

// ToolDefinition is what a tool-dispatch runtime advertises for a tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

type registration struct {
	def      ToolDefinition
	executor ToolExecutor
}

// ToolRegistry is the explicit name -> handler table.
// It is filled at startup and only read afterwards.
type ToolRegistry struct {
	entries map[string]registration
	order   []string
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{entries: make(map[string]registration)}
}

// Register adds a tool. The schema defaults to an empty object schema.
func (r *ToolRegistry) Register(def ToolDefinition, executor ToolExecutor) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" || executor == nil {
		return ErrToolExecutorNotRegistered
	}
	if _, exists := r.entries[def.Name]; exists {
		return ErrToolExecutorAlreadyRegistered
	}

	if len(def.InputSchema) == 0 {
		def.InputSchema = json.RawMessage(defaultInputSchema)
	}
	var schema map[string]any
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		return fmt.Errorf("%w: %s: input schema must be a json object", ErrToolDefinitionInvalid, def.Name)
	}
	if schema["type"] != "object" {
		return fmt.Errorf("%w: %s: input schema type must be \"object\"", ErrToolDefinitionInvalid, def.Name)
	}

	r.entries[def.Name] = registration{def: def, executor: executor}
	r.order = append(r.order, def.Name)
	return nil
}

func (r *ToolRegistry) Get(name string) (ToolExecutor, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, ErrToolExecutorNotRegistered
	}
	return entry.executor, nil
}

func (r *ToolRegistry) Definition(name string) (ToolDefinition, error) {
	entry, ok := r.entries[name]
	if !ok {
		return ToolDefinition{}, ErrToolExecutorNotRegistered
	}
	return entry.def, nil
}

// List returns definitions in registration order.
func (r *ToolRegistry) List() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

// Invoke validates params against the tool's schema and runs it.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, params json.RawMessage) (json.RawMessage, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolExecutorNotRegistered, name)
	}
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	if err := r.validateParams(entry.def, params); err != nil {
		return nil, err
	}
	return entry.executor.Execute(ctx, params)
}

func (r *ToolRegistry) validateParams(def ToolDefinition, params json.RawMessage) error {
	var input map[string]any
	if err := json.Unmarshal(params, &input); err != nil || input == nil {
		return fmt.Errorf("%w: params must be a json object", ErrToolValidationFailed)
	}

	var schema map[string]any
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		return fmt.Errorf("%w: invalid registered schema", ErrToolValidationFailed)
	}

	return validateAgainstMinimalSchema(input, schema)
}

// validateAgainstMinimalSchema checks required keys, additionalProperties and
// primitive property types. It is not a full JSON Schema validator.
func validateAgainstMinimalSchema(input, schema map[string]any) error {
	requiredKeys := extractStringSlice(schema["required"])
	for _, key := range requiredKeys {
		if _, ok := input[key]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrToolValidationFailed, key)
		}
	}

	allowAdditional := true
	if v, ok := schema["additionalProperties"].(bool); ok {
		allowAdditional = v
	}

	props, _ := schema["properties"].(map[string]any)

	for key, value := range input {
		propSchema, known := props[key].(map[string]any)
		if !known {
			if !allowAdditional {
				return fmt.Errorf("%w: unknown field %q", ErrToolValidationFailed, key)
			}
			continue
		}
		if want, ok := propSchema["type"].(string); ok && !matchesType(value, want) {
			return fmt.Errorf("%w: field %q must be of type %s", ErrToolValidationFailed, key, want)
		}
	}

	return nil
}

func matchesType(value any, want string) bool {
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "null":
		return value == nil
	}
	return true
}

func extractStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
