package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/integrity"
)

func (h *handlers) extractMetainfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	md, err := h.engine.ExtractMetainfo(ctx, path)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(md)
}

func (h *handlers) importFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}

	override := extract.ImportMetadata{
		Title:     getString(req, "title", ""),
		Authors:   getStringSlice(req, "authors"),
		Year:      getInt(req, "year", 0),
		Publisher: getString(req, "publisher", ""),
		SourceURL: getString(req, "source_url", ""),
		Tags:      getStringSlice(req, "tags"),
		Category1: getString(req, "category1", ""),
		Category2: getString(req, "category2", ""),
		Category3: getString(req, "category3", ""),
		Summary:   getString(req, "summary", ""),
	}

	f, err := h.engine.ImportFile(ctx, path, override)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(f.ToJSON())
}

func (h *handlers) importFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := getStringSlice(req, "paths")
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths is required"), nil
	}
	results := h.engine.ImportFiles(ctx, paths, nil, nil)

	type outcome struct {
		Path  string `json:"path"`
		Key   string `json:"key,omitempty"`
		Error string `json:"error,omitempty"`
	}
	out := make([]outcome, len(results))
	for i, r := range results {
		o := outcome{Path: r.Path}
		if r.Err != nil {
			o.Error = r.Err.Error()
		} else {
			o.Key = r.File.Key
		}
		out[i] = o
	}
	return jsonResult(out)
}

func (h *handlers) rebuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := getString(req, "key", "")
	apply := getBool(req, "apply", false)
	workers := getInt(req, "workers", 0)

	moves, err := h.engine.Rebuild(ctx, key, apply, workers)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(moves)
}

func (h *handlers) validateFilesInPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := getString(req, "root", "")
	recursive := getBool(req, "recursive", true)
	repair := getBool(req, "repair", false)

	mode := integrity.ReportOnly
	if repair {
		mode = integrity.Repair
	}
	report, err := h.engine.ValidateFilesInPath(ctx, root, recursive, mode)
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(report)
}

func (h *handlers) checkConfigCompatibility(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.engine.CheckConfigCompatibility(ctx); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText("compatible"), nil
}

