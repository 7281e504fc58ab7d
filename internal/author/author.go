// Package author validates and orchestrates author-identity operations
// over internal/store's AuthorRegistry: resolution (with case-folded,
// whitespace-normalized lookup and alias-to-canonical resolution), add,
// remove, and alias merging. The alias forest invariants themselves -
// cycle detection, depth-1 flattening - live in the store, since they are
// enforced within the same transaction as the row rewrites they protect.
package author

import (
	"context"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

// Registry validates author requests before delegating to the store.
type Registry struct {
	store store.AuthorRegistry
}

// New builds a Registry over st.
func New(st store.AuthorRegistry) *Registry {
	return &Registry{store: st}
}

// normalize collapses internal whitespace and trims, matching resolve's
// case-folded, whitespace-normalized lookup semantics. Case folding itself
// happens in SQL via COLLATE NOCASE in the store.
func normalize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Resolve looks up name, following any alias edge to its canonical author.
func (r *Registry) Resolve(ctx context.Context, name string) (*store.Author, error) {
	if err := validate.AuthorName(name); err != nil {
		return nil, err
	}
	return r.store.ResolveAuthor(ctx, normalize(name))
}

// Add creates a new canonical author.
func (r *Registry) Add(ctx context.Context, name string) (*store.Author, error) {
	if err := validate.AuthorName(name); err != nil {
		return nil, err
	}
	return r.store.AddAuthor(ctx, normalize(name))
}

// Remove soft-deletes an author, leaving any existing alias edges intact.
func (r *Registry) Remove(ctx context.Context, key string) error {
	return r.store.RemoveAuthor(ctx, key)
}

// Merge points aliasKey at canonicalKey, flattening any existing alias
// chain and re-homing aliasKey's file associations.
func (r *Registry) Merge(ctx context.Context, aliasKey, canonicalKey string) error {
	return r.store.MergeAuthors(ctx, aliasKey, canonicalKey)
}

// Aliases lists every author whose canonical resolution is canonicalKey.
func (r *Registry) Aliases(ctx context.Context, canonicalKey string) ([]store.Author, error) {
	return r.store.ListAuthorAliases(ctx, canonicalKey)
}

// ForFile lists the authors attributed to fileID, in position order.
func (r *Registry) ForFile(ctx context.Context, fileID int64) ([]store.Author, error) {
	return r.store.AuthorsForFile(ctx, fileID)
}
