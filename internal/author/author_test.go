package author

import (
	"context"
	"errors"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

func newTestRegistry(t *testing.T) (*Registry, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestAddRejectsBlankName(t *testing.T) {
	r, _ := newTestRegistry(t)
	if _, err := r.Add(context.Background(), "   "); !errors.Is(err, validate.ErrInvalidAuthor) {
		t.Fatalf("expected ErrInvalidAuthor, got %v", err)
	}
}

func TestResolveCaseFoldsAndNormalizesWhitespace(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Add(ctx, "Richard Feynman"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := r.Resolve(ctx, "  richard   feynman  ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Name != "Richard Feynman" {
		t.Fatalf("got %q", got.Name)
	}
}

func TestMergeResolvesAliasToCanonical(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()
	alias, err := r.Add(ctx, "R. Feynman")
	if err != nil {
		t.Fatalf("Add alias: %v", err)
	}
	canonical, err := r.Add(ctx, "Richard Feynman")
	if err != nil {
		t.Fatalf("Add canonical: %v", err)
	}
	if err := r.Merge(ctx, alias.Key, canonical.Key); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	resolved, err := r.Resolve(ctx, "R. Feynman")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Key != canonical.Key {
		t.Fatalf("expected resolution to canonical, got %#v", resolved)
	}
}
