// link.go validates file-to-file link endpoints and relation labels.
//
// Links connect file keys, not paths - path validity is the library
// path's concern, not the link's.
package validate

import "fmt"

// Link validates a proposed link between two files identified by key,
// with a free-form relation label.
func Link(fromKey, toKey, relation string) error {
	if fromKey == "" {
		return fmt.Errorf("%w: empty source key", ErrInvalidLink)
	}
	if toKey == "" {
		return fmt.Errorf("%w: empty target key", ErrInvalidLink)
	}
	if fromKey == toKey {
		return fmt.Errorf("%w: self-referential link", ErrInvalidLink)
	}
	if relation == "" {
		return fmt.Errorf("%w: empty relation", ErrInvalidLink)
	}
	return nil
}
