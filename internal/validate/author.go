// author.go validates author names before they reach the registry.
package validate

import (
	"fmt"
	"strings"
)

// AuthorName validates a name passed to add/resolve/merge.
func AuthorName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty author name", ErrInvalidAuthor)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: null byte in author name", ErrInvalidAuthor)
	}
	return nil
}
