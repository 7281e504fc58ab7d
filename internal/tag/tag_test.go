package tag

import (
	"context"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.SQLiteStore) {
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

func TestAddCreatesChainAndAttachesFile(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := m.Add(ctx, f.Key, "tech/rust"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tags, err := m.List(ctx, f.Key)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tags) != 1 || tags[0].Path != "tech/rust" {
		t.Fatalf("got %#v", tags)
	}
}

func TestAddRejectsEmptyTagSegment(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := m.Add(ctx, f.Key, "tech//rust"); err == nil {
		t.Fatal("expected error for empty tag segment")
	}
}

func TestRemoveDetachesTag(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := m.Add(ctx, f.Key, "tech/rust"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := m.Remove(ctx, f.Key, "tech/rust"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	tags, err := m.List(ctx, f.Key)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("got %#v, want empty", tags)
	}
}
