package validate

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/path"
)

// LibraryPath validates a file's library-relative destination path and
// returns its normalised form. maxLen of 0 means no limit.
func LibraryPath(p string, maxLen int) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: null byte in path", ErrInvalidPath)
	}
	if maxLen > 0 && len(p) > maxLen {
		return "", ErrPathTooLong
	}

	norm, err := path.Normalise(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	return norm, nil
}
