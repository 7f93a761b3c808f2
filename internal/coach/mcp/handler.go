package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/hyroxcoach/internal/coach"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolRegistry interface {
	Tools() []coach.Tool
	Invoke(ctx context.Context, name string, raw json.RawMessage) (coach.Result, error)
}

// Handler forwards MCP tool calls to the registry and renders results as JSON text.
type Handler struct {
	registry toolRegistry
}

func NewHandler(registry toolRegistry) *Handler {
	return &Handler{
		registry: registry,
	}
}

// ToolHandler returns the MCP handler for the named registry tool.
func (h *Handler) ToolHandler(name string) func(context.Context, *mcp.CallToolRequest, map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		raw, err := json.Marshal(args)
		if err != nil {
			return errorResult("Invalid arguments: " + err.Error()), nil, nil
		}

		res, err := h.registry.Invoke(ctx, name, raw)
		var verr *coach.ValidationError
		switch {
		case errors.As(err, &verr):
			return errorResult(verr.Error()), nil, nil
		case errors.Is(err, coach.ErrUnknownTool):
			return errorResult(fmt.Sprintf("Unknown tool: %s", name)), nil, nil
		case err != nil:
			return errorResult("Tool call failed"), nil, nil
		}

		text, err := json.Marshal(res)
		if err != nil {
			return errorResult("Error encoding result: " + err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, nil, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
