package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	tagbox "github.com/nerdneilsfield/tagbox"
	"github.com/nerdneilsfield/tagbox/internal/search"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

func searchOptionsFrom(req mcp.CallToolRequest) search.Options {
	opts := search.Options{
		Limit:          getInt(req, "limit", 50),
		Offset:         getInt(req, "offset", 0),
		SortBy:         search.SortField(getString(req, "sort", "")),
		IncludeDeleted: getBool(req, "include_deleted", false),
	}
	if getBool(req, "desc", false) {
		opts.SortDirection = search.Desc
	} else {
		opts.SortDirection = search.Asc
	}
	return opts
}

func (h *handlers) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}

	res, err := h.engine.Search(ctx, query, searchOptionsFrom(req))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(searchResultJSON(res))
}

func (h *handlers) fuzzySearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partial, err := req.RequireString("partial")
	if err != nil {
		return mcp.NewToolResultError("partial is required"), nil //nolint:nilerr
	}

	res, err := h.engine.FuzzySearch(ctx, partial, searchOptionsFrom(req))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(searchResultJSON(res))
}

func (h *handlers) queryDebug(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}

	dbg, err := h.engine.QueryDebug(ctx, query, searchOptionsFrom(req))
	if err != nil {
		return errResult(err), nil
	}
	return jsonResult(dbg)
}

func searchResultJSON(res tagbox.SearchResult) any {
	entries := make([]store.FileJSON, len(res.Entries))
	for i, f := range res.Entries {
		entries[i] = f.ToJSON()
	}
	return map[string]any{
		"entries":     entries,
		"total_count": res.TotalCount,
		"offset":      res.Offset,
		"limit":       res.Limit,
	}
}
