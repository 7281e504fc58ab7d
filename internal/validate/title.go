// title.go validates a file's required title field. Title is the only
// metadata field every file must carry - everything else (authors, year,
// publisher, categories) is optional.
package validate

import (
	"fmt"
	"strings"
)

// Title validates a file title.
func Title(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidTitle)
	}
	if strings.ContainsRune(t, 0) {
		return fmt.Errorf("%w: null byte in title", ErrInvalidTitle)
	}
	return nil
}
