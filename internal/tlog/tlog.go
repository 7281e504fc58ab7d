// Package tlog provides the process-level structured diagnostic logger.
// It is deliberately separate from the file_history audit trail
// (internal/store/files.go records that): tlog is for operational
// visibility into the running process, not for the catalogue's own
// change log. Every entry goes to stderr so stdout stays reserved for
// the stdio RPC wire protocol, the same split the teacher's MCP server
// makes between log/slog output and its JSON-RPC frames.
package tlog

import (
	"log/slog"
	"os"
)

// New builds a text logger writing to stderr at the given level.
// Passing nil as level uses slog's default (Info).
func New(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Default builds a stderr logger at Info level and installs it as the
// package-level slog default, mirroring the teacher's Serve() setup. Engine
// callers that don't need a custom logger can use this once at process
// start. Engine itself holds no logger.
func Default() *slog.Logger {
	logger := New(slog.LevelInfo)
	slog.SetDefault(logger)
	return logger
}
