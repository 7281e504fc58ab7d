package rebuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/editor"
	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/pathgen"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

func TestRunPreviewDoesNotMoveFiles(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	root := t.TempDir()
	ctx := context.Background()

	abs := filepath.Join(root, "uncategorized", "Intro.txt")
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := s.Insert(ctx, store.NewFileOptions{
		Path: "uncategorized/Intro.txt", Title: "Intro", Category1: "uncategorized",
		InitialHash: "h1", HashAlgo: "sha256",
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rb := rebuilderWithClassify(t, s, root, "{year}/{category1}", "{title}")
	moves, err := rb.Run(ctx, "", false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(moves) != 1 || !moves[0].Changed {
		t.Fatalf("got %#v", moves)
	}
	if _, err := os.Stat(abs); err != nil {
		t.Fatalf("preview must not move the file: %v", err)
	}
}

func rebuilderWithClassify(t *testing.T, s *store.SQLiteStore, root, classify, rename string) *Rebuilder {
	t.Helper()
	ed := editor.New(s, root, classify, rename, pathgen.DefaultOptions(), hash.SHA256)
	return New(s, ed, 2)
}

func TestRunApplyMovesFileAndUpdatesRow(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	root := t.TempDir()
	ctx := context.Background()

	abs := filepath.Join(root, "uncategorized", "Intro.txt")
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := s.Insert(ctx, store.NewFileOptions{
		Path: "uncategorized/Intro.txt", Title: "Intro", Category1: "uncategorized", Year: 2024,
		InitialHash: "h1", HashAlgo: "sha256",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rb := rebuilderWithClassify(t, s, root, "{year}/{category1}", "{title}")
	moves, err := rb.Run(ctx, "", true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(moves) != 1 || moves[0].Err != nil {
		t.Fatalf("got %#v", moves)
	}

	got, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if got.Path != moves[0].To {
		t.Fatalf("Path = %q, want %q", got.Path, moves[0].To)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(got.Path))); err != nil {
		t.Fatalf("file not at new location: %v", err)
	}
}
