// Package validate provides input validation for TagBox's domain types, at
// the boundary between caller input (CLI, MCP tool calls, importer) and
// the storage layer.
//
// # Design Philosophy
//
// Validation is minimal by design. Reject clearly dangerous inputs (null
// bytes, path traversal, empty identifiers) but avoid overly restrictive
// rules that would limit legitimate catalogues.
//
// # Validation Functions
//
// LibraryPath validates and normalises a file's library-relative path.
// Title validates a file's required title field.
// TagPath validates a hierarchical tag path.
// Link validates relationships between two files.
// AuthorName validates a name passed to the author registry.
//
// # Error Handling
//
// All validation errors wrap one of the sentinels defined in errors.go.
// Use errors.Is for type-safe checks:
//
//	if errors.Is(err, validate.ErrInvalidPath) {
//	    // handle invalid path
//	}
package validate
