package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) tagAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError("tag is required"), nil //nolint:nilerr
	}
	if err := h.engine.AddTag(ctx, key, tag); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("tagged %s %s", key, tag)), nil
}

func (h *handlers) tagRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError("tag is required"), nil //nolint:nilerr
	}
	if err := h.engine.RemoveTag(ctx, key, tag); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("untagged %s %s", key, tag)), nil
}

func (h *handlers) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	tags, err := h.engine.ListTags(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(tags)
}
