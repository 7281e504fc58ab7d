// Package path normalises and validates library-relative file paths.
//
// Every path stored in the catalogue (a file's destination, a move
// target) passes through this package first. Validation blocks traversal
// outside the library root; normalisation keeps stored paths consistent
// across platforms.
//
// Normalisation rules:
//   - Paths use forward slashes (Windows-compatible)
//   - No leading or trailing slashes
//   - No "." or ".." components
//   - Empty paths are rejected
//
// Platform-specific handling: the Normalise and Direct functions are
// implemented separately for Windows and Unix (see path_windows.go,
// path_unix.go) to get backslash handling right on each.
package path

import "errors"

// ErrInvalid indicates the provided path is invalid.
var ErrInvalid = errors.New("invalid path")

// ErrTooLong indicates the path exceeds the configured maximum length.
var ErrTooLong = errors.New("path too long")
