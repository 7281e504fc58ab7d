// Package mcpserver exposes tagbox operations to LLMs via the Model
// Context Protocol, built on mark3labs/mcp-go exactly as the teacher's
// internal/mcp package wraps its own document store.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	tagbox "github.com/nerdneilsfield/tagbox"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// handlers gives every MCP tool access to the open engine.
type handlers struct {
	engine *tagbox.Engine
}

// Serve starts the MCP server over stdio against an already-open engine.
// Stdout carries protocol frames only; diagnostics go to the default
// slog logger, which the caller has pointed at stderr.
func Serve(engine *tagbox.Engine) error {
	h := &handlers{engine: engine}

	s := server.NewMCPServer(
		"tagbox",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("tagbox MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
