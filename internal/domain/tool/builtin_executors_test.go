package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type stubChecker struct {
	valid bool
	seen  []string
}

func (s *stubChecker) IsValidImageURL(_ context.Context, rawURL string) bool {
	s.seen = append(s.seen, rawURL)
	return s.valid
}

func newBuiltinRegistry(t *testing.T, checker ImageChecker) *ToolRegistry {
	t.Helper()
	r := NewToolRegistry()
	if err := RegisterBuiltInExecutors(r, BuiltinServices{Images: checker}); err != nil {
		t.Fatalf("RegisterBuiltInExecutors returned error: %v", err)
	}
	return r
}

func TestRegisterBuiltInExecutors_Definition(t *testing.T) {
	t.Parallel()

	r := newBuiltinRegistry(t, &stubChecker{})

	def, err := r.Definition(BuiltinValidateLogoURL)
	if err != nil {
		t.Fatalf("Definition returned error: %v", err)
	}
	if def.Description != "Checks whether the URL resolves to a valid logo." {
		t.Fatalf("unexpected description %q", def.Description)
	}

	var schema struct {
		Required   []string                  `json:"required"`
		Properties map[string]map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(def.InputSchema, &schema); err != nil {
		t.Fatalf("schema is not valid json: %v", err)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "logo_url" {
		t.Fatalf("expected logo_url to be required, got %v", schema.Required)
	}
	if schema.Properties["logo_url"]["type"] != "string" {
		t.Fatalf("expected logo_url to be a string, got %v", schema.Properties["logo_url"])
	}
}

func TestRegisterBuiltInExecutors_Idempotent(t *testing.T) {
	t.Parallel()

	r := newBuiltinRegistry(t, &stubChecker{})
	if err := RegisterBuiltInExecutors(r, BuiltinServices{Images: &stubChecker{}}); err != nil {
		t.Fatalf("second registration returned error: %v", err)
	}
	if n := len(r.List()); n != 1 {
		t.Fatalf("expected 1 tool, got %d", n)
	}
}

func TestValidateLogoURLExecutor_ReturnsCheckerVerdict(t *testing.T) {
	t.Parallel()

	for _, valid := range []bool{true, false} {
		checker := &stubChecker{valid: valid}
		r := newBuiltinRegistry(t, checker)

		out, err := r.Invoke(context.Background(), BuiltinValidateLogoURL, json.RawMessage(`{"logo_url":"https://example.com/logo.png"}`))
		if err != nil {
			t.Fatalf("Invoke returned error: %v", err)
		}

		want := "false"
		if valid {
			want = "true"
		}
		if string(out) != want {
			t.Fatalf("expected %s, got %s", want, out)
		}
		if len(checker.seen) != 1 || checker.seen[0] != "https://example.com/logo.png" {
			t.Fatalf("checker saw %v", checker.seen)
		}
	}
}

func TestValidateLogoURLExecutor_PassesOddInputThrough(t *testing.T) {
	t.Parallel()

	checker := &stubChecker{}
	r := newBuiltinRegistry(t, checker)

	for _, raw := range []string{"", "not a url", "   "} {
		params, _ := json.Marshal(map[string]string{"logo_url": raw})
		out, err := r.Invoke(context.Background(), BuiltinValidateLogoURL, params)
		if err != nil {
			t.Fatalf("Invoke(%q) returned error: %v", raw, err)
		}
		if string(out) != "false" {
			t.Fatalf("Invoke(%q) = %s, want false", raw, out)
		}
	}
	if len(checker.seen) != 3 {
		t.Fatalf("expected every input to reach the checker, got %v", checker.seen)
	}
}

func TestValidateLogoURLExecutor_MissingArgument(t *testing.T) {
	t.Parallel()

	r := newBuiltinRegistry(t, &stubChecker{})
	if _, err := r.Invoke(context.Background(), BuiltinValidateLogoURL, json.RawMessage(`{}`)); !errors.Is(err, ErrToolValidationFailed) {
		t.Fatalf("expected ErrToolValidationFailed, got %v", err)
	}
}

func TestValidateLogoURLExecutor_NoChecker(t *testing.T) {
	t.Parallel()

	_, err := NewValidateLogoURLExecutor(nil).Execute(context.Background(), json.RawMessage(`{"logo_url":"x"}`))
	if !errors.Is(err, ErrBuiltinExecutionFailed) {
		t.Fatalf("expected ErrBuiltinExecutionFailed, got %v", err)
	}
}
