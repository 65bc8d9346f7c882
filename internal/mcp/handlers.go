package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// GenericToolHandler creates a handler that routes an MCP tool call to the
// Upbit endpoint described by ct. Failures become error results; the handler
// itself never returns an error.
func GenericToolHandler(p *UpbitProxy, ct CatalogTool) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := p.Execute(ctx, ct, r.GetArguments())
		if err != nil {
			p.logger.Warn().
				Str("tool", ct.Name).
				Str("kind", errorKind(err)).
				Str("error", err.Error()).
				Msg("tool call failed")
			return errorResult(errorKind(err) + ": " + err.Error()), nil
		}
		return textResult(text), nil
	}
}

// errorKind names the class of a tool failure.
func errorKind(err error) string {
	var (
		ve *ValidationError
		ce *upbit.ConfigurationError
		te *upbit.TransportError
		se *upbit.SchemaError
	)
	switch {
	case errors.As(err, &ve):
		return "Validation error"
	case errors.As(err, &ce):
		return "Configuration error"
	case errors.As(err, &te):
		return "Transport error"
	case errors.As(err, &se):
		return "Schema error"
	default:
		return "Error"
	}
}

// textResult creates an MCP text result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
