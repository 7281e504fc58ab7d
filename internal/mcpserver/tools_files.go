package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	tagbox "github.com/nerdneilsfield/tagbox"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

func requireKey(req mcp.CallToolRequest) (string, error) {
	return req.RequireString("key")
}

func (h *handlers) getFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	f, err := h.engine.GetFile(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(f.ToJSON())
}

func (h *handlers) getFilePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	p, err := h.engine.GetFilePath(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(p), nil
}

func (h *handlers) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := tagbox.ListOptions{
		PathPrefix:     getString(req, "prefix", ""),
		IncludeDeleted: getBool(req, "include_deleted", false),
		Limit:          getInt(req, "limit", 100),
		Offset:         getInt(req, "offset", 0),
	}
	files, err := h.engine.List(ctx, opts)
	if err != nil {
		return errResult(err), nil
	}
	out := make([]store.FileJSON, len(files))
	for i, f := range files {
		out[i] = f.ToJSON()
	}
	return jsonResult(out)
}

func (h *handlers) updateFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	field, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("field is required"), nil //nolint:nilerr
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value is required"), nil //nolint:nilerr
	}

	var fields store.UpdateFieldSet
	switch field {
	case "title":
		fields.Title = &value
	case "publisher":
		fields.Publisher = &value
	case "source_url":
		fields.SourceURL = &value
	case "category1":
		fields.Category1 = &value
	case "category2":
		fields.Category2 = &value
	case "category3":
		fields.Category3 = &value
	case "summary":
		fields.Summary = &value
	case "full_text":
		fields.FullText = &value
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unrecognized field %q", field)), nil
	}

	if err := h.engine.UpdateFile(ctx, key, fields); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated %s.%s", key, field)), nil
}

func (h *handlers) moveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	if err := h.engine.MoveFile(ctx, key); err != nil {
		return errResult(err), nil
	}
	f, err := h.engine.GetFile(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(f.ToJSON())
}

func (h *handlers) softDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	reason := getString(req, "reason", "")
	if err := h.engine.SoftDelete(ctx, key, reason); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", key)), nil
}

func (h *handlers) restore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	if err := h.engine.Restore(ctx, key); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("restored %s", key)), nil
}

func (h *handlers) recordAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	if err := h.engine.RecordAccess(ctx, key); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("touched %s", key)), nil
}

func (h *handlers) updateFileHash(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	if err := h.engine.UpdateFileHash(ctx, key); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("rehashed %s", key)), nil
}

func (h *handlers) fileHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	entries, err := h.engine.FileHistory(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(entries)
}

func (h *handlers) fileAccessStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := requireKey(req)
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	stats, err := h.engine.FileAccessStats(ctx, key)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(stats)
}
