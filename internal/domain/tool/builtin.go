package tool

import (
	"context"
	"encoding/json"
)

const BuiltinValidateLogoURL = "validate_logo_url"

// ImageChecker is the validator contract the built-in tools depend on.
type ImageChecker interface {
	IsValidImageURL(ctx context.Context, rawURL string) bool
}

type BuiltinServices struct {
	Images ImageChecker
}

type builtinDefinition struct {
	Definition ToolDefinition
	Executor   func(BuiltinServices) ToolExecutor
}

func builtinDefinitions() []builtinDefinition {
	return []builtinDefinition{
		{
			Definition: ToolDefinition{
				Name:        BuiltinValidateLogoURL,
				Description: "Checks whether the URL resolves to a valid logo.",
				InputSchema: json.RawMessage(`{"type":"object","required":["logo_url"],"properties":{"logo_url":{"type":"string","description":"Absolute http(s) URL of the logo image"}},"additionalProperties":false}`),
			},
			Executor: func(s BuiltinServices) ToolExecutor { return NewValidateLogoURLExecutor(s.Images) },
		},
	}
}

// RegisterBuiltInExecutors fills registry with every built-in tool.
// Re-registering an existing name is not an error.
func RegisterBuiltInExecutors(registry *ToolRegistry, services BuiltinServices) error {
	for _, builtin := range builtinDefinitions() {
		err := registry.Register(builtin.Definition, builtin.Executor(services))
		if err != nil && err != ErrToolExecutorAlreadyRegistered {
			return err
		}
	}
	return nil
}
