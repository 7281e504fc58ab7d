package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/pathgen"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

func newTestEditor(t *testing.T) (*Editor, *store.SQLiteStore, string) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	root := t.TempDir()
	e := New(s, root, "{category1}", "{title}", pathgen.DefaultOptions(), hash.SHA256)
	return e, s, root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestUpdateFieldValidatesTitle(t *testing.T) {
	e, s, _ := newTestEditor(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "tech/a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.UpdateField(ctx, f.Key, "title", "   "); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestUpdateFieldAppliesAndReindexes(t *testing.T) {
	e, s, _ := newTestEditor(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "tech/a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.UpdateField(ctx, f.Key, "title", "New Title"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	got, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if got.Title != "New Title" {
		t.Errorf("Title = %q", got.Title)
	}
	hist, err := s.History(ctx, f.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) == 0 || hist[len(hist)-1].Action != "update" {
		t.Fatalf("expected trailing update history row, got %#v", hist)
	}
}

func TestSoftDeleteAndRestoreRoundTrip(t *testing.T) {
	e, s, _ := newTestEditor(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "tech/a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.SoftDelete(ctx, f.Key, "duplicate"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := s.ByKey(ctx, f.Key, false); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := e.Restore(ctx, f.Key); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := s.ByKey(ctx, f.Key, false); err != nil {
		t.Fatalf("expected file visible after restore: %v", err)
	}
}

func TestMoveFileRenamesOnDiskAndUpdatesPath(t *testing.T) {
	e, s, root := newTestEditor(t)
	ctx := context.Background()
	writeFile(t, root, "old/book.pdf", "content")
	f, err := s.Insert(ctx, store.NewFileOptions{
		Path: "old/book.pdf", Title: "Moved Book", Category1: "science", InitialHash: "h1", HashAlgo: "sha256",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := e.MoveFile(ctx, f.Key); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}

	got, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if got.Path == "old/book.pdf" {
		t.Fatal("expected path to change")
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(got.Path))); err != nil {
		t.Fatalf("expected file at new path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "old/book.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected old path gone, err=%v", err)
	}
}

func TestUpdateFileHashDetectsDrift(t *testing.T) {
	e, s, root := newTestEditor(t)
	ctx := context.Background()
	writeFile(t, root, "tech/a.pdf", "version one")
	f, err := s.Insert(ctx, store.NewFileOptions{Path: "tech/a.pdf", Title: "A", InitialHash: "orig", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	writeFile(t, root, "tech/a.pdf", "version two, different content")
	if err := e.UpdateFileHash(ctx, f.Key); err != nil {
		t.Fatalf("UpdateFileHash: %v", err)
	}

	hist, err := s.History(ctx, f.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	found := false
	for _, h := range hist {
		if h.Action == "rehash" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rehash history row, got %#v", hist)
	}
}
