// tag.go validates hierarchical tag paths ("science/physics/quantum").
// Unlike a library path, a tag path has no filesystem meaning - only
// empty segments and null bytes are rejected.
package validate

import (
	"fmt"
	"strings"
)

// TagPath validates a slash-separated tag path. Leading/trailing slashes
// are tolerated (EnsureTagPath trims them); empty segments in the middle
// are not.
func TagPath(t string) error {
	trimmed := strings.Trim(t, "/")
	if trimmed == "" {
		return fmt.Errorf("%w: empty tag path", ErrInvalidTag)
	}
	if strings.ContainsRune(t, 0) {
		return fmt.Errorf("%w: null byte in tag path", ErrInvalidTag)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in tag path %q", ErrInvalidTag, t)
		}
	}
	return nil
}
