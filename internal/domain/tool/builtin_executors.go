package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrBuiltinExecutionFailed = errors.New("builtin tool execution failed")

type ValidateLogoURLExecutor struct{ images ImageChecker }

func NewValidateLogoURLExecutor(images ImageChecker) ToolExecutor {
	return &ValidateLogoURLExecutor{images: images}
}

type validateLogoURLParams struct {
	LogoURL string `json:"logo_url"`
}

// Execute hands the URL to the checker untouched; odd input is the checker's call.
// The result is a bare JSON boolean.
func (e *ValidateLogoURLExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if e.images == nil {
		return nil, fmt.Errorf("%w: image checker not configured", ErrBuiltinExecutionFailed)
	}

	var in validateLogoURLParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("%w: invalid params", ErrBuiltinExecutionFailed)
	}

	valid := e.images.IsValidImageURL(ctx, in.LogoURL)
	out, err := json.Marshal(valid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuiltinExecutionFailed, err)
	}
	return out, nil
}
