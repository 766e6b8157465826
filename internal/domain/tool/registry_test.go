package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type noopExecutor struct{}

func (noopExecutor) Execute(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}

func TestToolRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	r := NewToolRegistry()
	if err := r.Register(ToolDefinition{Name: "noop"}, noopExecutor{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := r.Get("noop"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	def, err := r.Definition("noop")
	if err != nil {
		t.Fatalf("Definition returned error: %v", err)
	}
	if string(def.InputSchema) != defaultInputSchema {
		t.Fatalf("expected default schema, got %s", def.InputSchema)
	}
}

func TestToolRegistry_Register_Rejects(t *testing.T) {
	t.Parallel()

	r := NewToolRegistry()
	if err := r.Register(ToolDefinition{Name: "dup"}, noopExecutor{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	tests := []struct {
		name     string
		def      ToolDefinition
		executor ToolExecutor
		want     error
	}{
		{"duplicate", ToolDefinition{Name: "dup"}, noopExecutor{}, ErrToolExecutorAlreadyRegistered},
		{"blank name", ToolDefinition{Name: "  "}, noopExecutor{}, ErrToolExecutorNotRegistered},
		{"nil executor", ToolDefinition{Name: "x"}, nil, ErrToolExecutorNotRegistered},
		{"non-json schema", ToolDefinition{Name: "y", InputSchema: json.RawMessage(`nope`)}, noopExecutor{}, ErrToolDefinitionInvalid},
		{"non-object schema", ToolDefinition{Name: "z", InputSchema: json.RawMessage(`{"type":"string"}`)}, noopExecutor{}, ErrToolDefinitionInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.def, tt.executor)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToolRegistry_List_KeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewToolRegistry()
	for _, name := range []string{"b", "a", "c"} {
		if err := r.Register(ToolDefinition{Name: name}, noopExecutor{}); err != nil {
			t.Fatalf("Register(%s) returned error: %v", name, err)
		}
	}

	defs := r.List()
	if len(defs) != 3 || defs[0].Name != "b" || defs[1].Name != "a" || defs[2].Name != "c" {
		t.Fatalf("unexpected order: %#v", defs)
	}
}

func TestToolRegistry_Invoke(t *testing.T) {
	t.Parallel()

	r := NewToolRegistry()
	var got json.RawMessage
	err := r.Register(ToolDefinition{
		Name:        "echo",
		InputSchema: json.RawMessage(`{"type":"object","required":["msg"],"properties":{"msg":{"type":"string"}},"additionalProperties":false}`),
	}, ExecutorFunc(func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		got = params
		return params, nil
	}))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"msg":"hi"}`)); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if string(got) != `{"msg":"hi"}` {
		t.Fatalf("executor received %s", got)
	}

	if _, err := r.Invoke(context.Background(), "missing", nil); !errors.Is(err, ErrToolExecutorNotRegistered) {
		t.Fatalf("expected ErrToolExecutorNotRegistered, got %v", err)
	}

	for _, params := range []string{``, `{"owner_id":"u1"`, `[]`, `null`, `{"msg":1}`, `{"msg":"hi","extra":true}`} {
		if _, err := r.Invoke(context.Background(), "echo", json.RawMessage(params)); !errors.Is(err, ErrToolValidationFailed) {
			t.Fatalf("params %q: expected ErrToolValidationFailed, got %v", params, err)
		}
	}
}

func TestValidateAgainstMinimalSchema(t *testing.T) {
	t.Parallel()

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		input := map[string]any{"name": "alice"}
		schema := map[string]any{
			"required": []any{"name", "email"},
		}
		if err := validateAgainstMinimalSchema(input, schema); !errors.Is(err, ErrToolValidationFailed) {
			t.Fatalf("expected ErrToolValidationFailed, got %v", err)
		}
	})

	t.Run("additional allowed by default", func(t *testing.T) {
		t.Parallel()
		input := map[string]any{"name": "alice", "extra": 1.0}
		schema := map[string]any{
			"properties": map[string]any{"name": map[string]any{"type": "string"}},
		}
		if err := validateAgainstMinimalSchema(input, schema); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()
		input := map[string]any{"count": 1.5}
		schema := map[string]any{
			"properties": map[string]any{"count": map[string]any{"type": "integer"}},
		}
		if err := validateAgainstMinimalSchema(input, schema); !errors.Is(err, ErrToolValidationFailed) {
			t.Fatalf("expected ErrToolValidationFailed, got %v", err)
		}
	})
}

func TestMatchesType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  string
		ok    bool
	}{
		{"x", "string", true},
		{1.0, "string", false},
		{true, "boolean", true},
		{2.0, "integer", true},
		{2.5, "number", true},
		{map[string]any{}, "object", true},
		{[]any{}, "array", true},
		{nil, "null", true},
		{"x", "custom", true},
	}
	for _, tt := range tests {
		if got := matchesType(tt.value, tt.want); got != tt.ok {
			t.Errorf("matchesType(%#v, %q) = %v, want %v", tt.value, tt.want, got, tt.ok)
		}
	}
}
