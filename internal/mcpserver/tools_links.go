package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) linkFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("from is required"), nil //nolint:nilerr
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to is required"), nil //nolint:nilerr
	}
	relation, err := req.RequireString("relation")
	if err != nil {
		return mcp.NewToolResultError("relation is required"), nil //nolint:nilerr
	}

	l, err := h.engine.LinkFiles(ctx, from, to, relation)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(l)
}

func (h *handlers) unlinkFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("from is required"), nil //nolint:nilerr
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to is required"), nil //nolint:nilerr
	}
	relation, err := req.RequireString("relation")
	if err != nil {
		return mcp.NewToolResultError("relation is required"), nil //nolint:nilerr
	}

	if err := h.engine.UnlinkFiles(ctx, from, to, relation); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("unlinked %s -%s-> %s", from, relation, to)), nil
}

func (h *handlers) outgoingLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	links, err := h.engine.OutgoingLinks(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(links)
}

func (h *handlers) incomingLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	links, err := h.engine.IncomingLinks(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(links)
}
