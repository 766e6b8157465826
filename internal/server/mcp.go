// Package server hosts the tool registry over MCP (stdio or streamable HTTP)
// and a small JSON API on the same registry.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/matiasleandrokruk/logoguard/internal/domain/tool"
	"github.com/matiasleandrokruk/logoguard/internal/version"
)

const instructions = "Call validate_logo_url with an absolute http(s) URL. " +
	"The result is the text true when the URL serves a decodable image, false otherwise."

// NewMCPServer builds an MCP server advertising every tool in registry,
// in registration order.
func NewMCPServer(registry *tool.ToolRegistry) *mcp.Server {
	srv := mcp.NewServer(
		&mcp.Implementation{Name: version.Name, Version: version.Version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	for _, def := range registry.List() {
		srv.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, toolHandler(registry, def.Name))
	}
	return srv
}

// toolHandler dispatches one call through the registry. Registry errors are
// reported to the caller as a tool error, not a protocol error.
func toolHandler(registry *tool.ToolRegistry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := registry.Invoke(ctx, name, req.Params.Arguments)
		if err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("tool call rejected")
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
		}, nil
	}
}

// Serve runs srv on transport until the peer disconnects or ctx is done.
func Serve(ctx context.Context, srv *mcp.Server, transport mcp.Transport) error {
	log.Info().Str("transport", fmt.Sprintf("%T", transport)).Msg("mcp server starting")
	err := srv.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
