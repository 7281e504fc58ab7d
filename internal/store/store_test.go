package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndByKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f, err := s.Insert(ctx, NewFileOptions{
		Path: "tech/2024/book.pdf", Title: "Intro to Rust", Year: 2024,
		InitialHash: "abc123", HashAlgo: "sha256", SizeBytes: 1024,
		AuthorNames: []string{"Ada Lovelace"}, TagPaths: []string{"tech/rust"},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if f.Key == "" {
		t.Fatal("expected generated key")
	}

	got, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if got.Title != "Intro to Rust" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Authors) != 1 || got.Authors[0].Name != "Ada Lovelace" {
		t.Errorf("Authors = %v", got.Authors)
	}
	if len(got.Tags) != 1 || got.Tags[0].Path != "tech/rust" {
		t.Errorf("Tags = %v", got.Tags)
	}
}

func TestByInitialHashDetectsDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "dupehash", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup, err := s.ByInitialHash(ctx, "sha256", "dupehash")
	if err != nil {
		t.Fatalf("ByInitialHash: %v", err)
	}
	if dup.Path != "a.pdf" {
		t.Errorf("Path = %q", dup.Path)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := s.SoftDelete(ctx, f.Key, "superseded"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := s.ByKey(ctx, f.Key, false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	deleted, err := s.ByKey(ctx, f.Key, true)
	if err != nil || deleted.DeletedAt == nil {
		t.Fatalf("expected soft-deleted row visible with includeDeleted, err=%v", err)
	}

	if err := s.Restore(ctx, f.Key); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	restored, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey after restore: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("expected DeletedAt nil after restore")
	}
}

func TestUpdateSparseFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "Old Title", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	newTitle := "New Title"
	if err := s.Update(ctx, f.Key, UpdateFieldSet{Title: &newTitle}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.ByKey(ctx, f.Key, false)
	if got.Title != "New Title" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestMergeAuthorsRejectsSelfAndCycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a, _ := s.AddAuthor(ctx, "Ada")
	b, _ := s.AddAuthor(ctx, "A. Lovelace")
	c, _ := s.AddAuthor(ctx, "Augusta")

	if err := s.MergeAuthors(ctx, a.Key, a.Key); err == nil {
		t.Error("expected error merging author into itself")
	}

	if err := s.MergeAuthors(ctx, b.Key, a.Key); err != nil {
		t.Fatalf("MergeAuthors: %v", err)
	}
	if err := s.MergeAuthors(ctx, c.Key, b.Key); err != nil {
		t.Fatalf("MergeAuthors (chain): %v", err)
	}
	if err := s.MergeAuthors(ctx, a.Key, c.Key); err == nil {
		t.Error("expected cycle error")
	}

	aliases, err := s.ListAuthorAliases(ctx, a.Key)
	if err != nil {
		t.Fatalf("ListAuthorAliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Errorf("expected 2 aliases after flattening merge chain, got %d", len(aliases))
	}
}

func TestTagFileCreatesAncestors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.TagFile(ctx, f.ID, "science/physics/quantum"); err != nil {
		t.Fatalf("TagFile: %v", err)
	}
	tags, err := s.TagsForFile(ctx, f.ID)
	if err != nil {
		t.Fatalf("TagsForFile: %v", err)
	}
	if len(tags) != 1 || tags[0].Path != "science/physics/quantum" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestLinkIdempotentRestore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a, _ := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	b, _ := s.Insert(ctx, NewFileOptions{Path: "b.pdf", Title: "B", InitialHash: "h2", HashAlgo: "sha256"})

	if _, err := s.Link(ctx, a.Key, b.Key, "references"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := s.Unlink(ctx, a.Key, b.Key, "references"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	out, err := s.Outgoing(ctx, a.Key)
	if err != nil {
		t.Fatalf("Outgoing: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no live links after unlink, got %v", out)
	}

	if _, err := s.Link(ctx, a.Key, b.Key, "references"); err != nil {
		t.Fatalf("re-Link: %v", err)
	}
	out, err = s.Outgoing(ctx, a.Key)
	if err != nil {
		t.Fatalf("Outgoing: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected link restored, got %v", out)
	}
}

func TestVacuumPurgesSoftDeleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.SoftDelete(ctx, f.Key, ""); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	purged, err := s.Vacuum(ctx, nil)
	if err != nil {
		t.Fatalf("Vacuum: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if _, err := s.ByKey(ctx, f.Key, true); err != ErrNotFound {
		t.Errorf("expected file gone after vacuum, got %v", err)
	}
}

func TestStatsReflectsLiveCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.Insert(ctx, NewFileOptions{Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Files != 1 {
		t.Errorf("Files = %d, want 1", st.Files)
	}
}
