package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) addAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil //nolint:nilerr
	}
	a, err := h.engine.AddAuthor(ctx, name)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(a)
}

func (h *handlers) removeAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	if err := h.engine.RemoveAuthor(ctx, key); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %s", key)), nil
}

func (h *handlers) mergeAuthors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("from is required"), nil //nolint:nilerr
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to is required"), nil //nolint:nilerr
	}
	if err := h.engine.MergeAuthors(ctx, from, to); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("merged %s into %s", from, to)), nil
}
