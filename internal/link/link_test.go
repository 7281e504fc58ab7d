package link

import (
	"context"
	"errors"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/validate"
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

func TestLinkRejectsSelfReference(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := m.Link(ctx, f.Key, f.Key, "cites"); !errors.Is(err, validate.ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink, got %v", err)
	}
}

func TestLinkUnlinkRoundTrip(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	a, _ := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	b, _ := s.Insert(ctx, store.NewFileOptions{Path: "b.pdf", Title: "B", InitialHash: "h2", HashAlgo: "sha256"})

	if _, err := m.Link(ctx, a.Key, b.Key, "cites"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	out, err := m.Outgoing(ctx, a.Key)
	if err != nil || len(out) != 1 {
		t.Fatalf("Outgoing: %v, %#v", err, out)
	}
	in, err := m.Incoming(ctx, b.Key)
	if err != nil || len(in) != 1 {
		t.Fatalf("Incoming: %v, %#v", err, in)
	}

	if err := m.Unlink(ctx, a.Key, b.Key, "cites"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	out, err = m.Outgoing(ctx, a.Key)
	if err != nil || len(out) != 0 {
		t.Fatalf("Outgoing after unlink: %v, %#v", err, out)
	}
}

func TestBatchUnlinkRemovesAllOutgoing(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	a, _ := s.Insert(ctx, store.NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	b, _ := s.Insert(ctx, store.NewFileOptions{Path: "b.pdf", Title: "B", InitialHash: "h2", HashAlgo: "sha256"})
	c, _ := s.Insert(ctx, store.NewFileOptions{Path: "c.pdf", Title: "C", InitialHash: "h3", HashAlgo: "sha256"})

	if _, err := m.Link(ctx, a.Key, b.Key, "cites"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if _, err := m.Link(ctx, a.Key, c.Key, "related"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	n, err := m.BatchUnlink(ctx, a.Key)
	if err != nil {
		t.Fatalf("BatchUnlink: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
}
