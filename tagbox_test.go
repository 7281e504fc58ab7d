package tagbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/config"
	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/integrity"
	"github.com/nerdneilsfield/tagbox/internal/search"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.Database{Path: filepath.Join(dir, "catalogue.db")},
		Storage: config.Storage{
			RootDir:          filepath.Join(dir, "library"),
			ClassifyTemplate: "{category1}",
			RenameTemplate:   "{title}",
			OnImport:         "copy",
		},
	}
	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, dir
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

// Scenario 1 from the testable-properties scenarios: import then search
// by tag, author, and free text.
func TestImportThenSearchByTagAuthorAndText(t *testing.T) {
	e, dir := newTestEngine(t)
	ctx := context.Background()

	src := writeSource(t, dir, "intro.txt", "Introduction to Rust programming.")
	f, err := e.ImportFile(ctx, src, extract.ImportMetadata{
		Title: "Intro", Authors: []string{"Ada"}, Tags: []string{"tech/rust"},
	})
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if f.Title != "Intro" {
		t.Fatalf("Title = %q, want Intro", f.Title)
	}

	byTag, err := e.Search(ctx, "tag:tech/rust", search.Options{})
	if err != nil {
		t.Fatalf("Search by tag: %v", err)
	}
	if len(byTag.Entries) != 1 || byTag.Entries[0].Key != f.Key {
		t.Fatalf("search by tag: got %#v", byTag.Entries)
	}

	byAuthor, err := e.Search(ctx, "author:Ada", search.Options{})
	if err != nil {
		t.Fatalf("Search by author: %v", err)
	}
	if len(byAuthor.Entries) != 1 {
		t.Fatalf("search by author: got %#v", byAuthor.Entries)
	}

	byText, err := e.Search(ctx, "Intro", search.Options{})
	if err != nil {
		t.Fatalf("Search by text: %v", err)
	}
	if len(byText.Entries) != 1 {
		t.Fatalf("search by text: got %#v", byText.Entries)
	}
}

// Scenario 2: importing the same file twice is rejected as a duplicate
// and the file count does not change.
func TestDuplicateImportRejected(t *testing.T) {
	e, dir := newTestEngine(t)
	ctx := context.Background()

	src := writeSource(t, dir, "dup.txt", "same bytes")
	if _, err := e.ImportFile(ctx, src, extract.ImportMetadata{Title: "Dup"}); err != nil {
		t.Fatalf("first ImportFile: %v", err)
	}

	src2 := writeSource(t, dir, "dup2.txt", "same bytes")
	_, err := e.ImportFile(ctx, src2, extract.ImportMetadata{Title: "Dup Again"})
	if tberr.KindOf(err) != tberr.KindDuplicateHash {
		t.Fatalf("expected KindDuplicateHash, got %v", err)
	}

	all, err := e.List(ctx, ListOptions{Limit: 100})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("file count = %d, want 1", len(all))
	}
}

// Scenario 3: query_debug reports SQL parameters in DSL order and a
// non-negative estimated row count.
func TestQueryDebugReportsParamsInOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	dbg, err := e.QueryDebug(ctx, `tag:rust AND (author:Ada OR year:2024) -tag:old`, search.Options{})
	if err != nil {
		t.Fatalf("QueryDebug: %v", err)
	}
	want := []any{"rust", "rust/%", "%Ada%", 2024, 2024, "old", "old/%"}
	if len(dbg.Params) < len(want) {
		t.Fatalf("Params = %v, want at least %v", dbg.Params, want)
	}
	for i, w := range want {
		if dbg.Params[i] != w {
			t.Fatalf("Params[%d] = %v, want %v", i, dbg.Params[i], w)
		}
	}
	if dbg.EstimatedRowCount < 0 {
		t.Fatalf("EstimatedRowCount = %d, want >= 0", dbg.EstimatedRowCount)
	}
}

// Scenario 4: soft_delete removes a file from search; restore brings it back.
func TestSoftDeleteThenRestoreRoundTrips(t *testing.T) {
	e, dir := newTestEngine(t)
	ctx := context.Background()

	src := writeSource(t, dir, "intro.txt", "Introduction text.")
	f, err := e.ImportFile(ctx, src, extract.ImportMetadata{Title: "Intro"})
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if err := e.SoftDelete(ctx, f.Key, "obsolete"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	res, err := e.Search(ctx, "Intro", search.Options{})
	if err != nil {
		t.Fatalf("Search after delete: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Fatalf("expected 0 results after delete, got %d", len(res.Entries))
	}
	listed, err := e.List(ctx, ListOptions{IncludeDeleted: true, Limit: 100})
	if err != nil {
		t.Fatalf("List include_deleted: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 listed with include_deleted, got %d", len(listed))
	}

	if err := e.Restore(ctx, f.Key); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	res, err = e.Search(ctx, "Intro", search.Options{})
	if err != nil {
		t.Fatalf("Search after restore: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 result after restore, got %d", len(res.Entries))
	}
}

// Scenario 5: merging author B into A re-homes resolution; re-merging A
// into B is rejected as a cycle.
func TestMergeAuthorsResolvesAndRejectsCycle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := e.AddAuthor(ctx, "Ada")
	if err != nil {
		t.Fatalf("AddAuthor a: %v", err)
	}
	b, err := e.AddAuthor(ctx, "A. Lovelace")
	if err != nil {
		t.Fatalf("AddAuthor b: %v", err)
	}

	if err := e.MergeAuthors(ctx, b.Key, a.Key); err != nil {
		t.Fatalf("MergeAuthors: %v", err)
	}

	if err := e.MergeAuthors(ctx, a.Key, b.Key); tberr.KindOf(err) != tberr.KindAliasCycle {
		t.Fatalf("expected KindAliasCycle, got %v", err)
	}
}

// Scenario 6: rebuild previews one move per affected file without
// applying it, then applying it relocates the file on disk and updates
// its path while leaving initial_hash untouched.
func TestRebuildPreviewThenApplyMovesFile(t *testing.T) {
	e, dir := newTestEngine(t)
	ctx := context.Background()

	src := writeSource(t, dir, "intro.txt", "Introduction text.")
	f, err := e.ImportFile(ctx, src, extract.ImportMetadata{Title: "Intro", Category1: "tech", Category2: "", Category3: ""})
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	originalHash := f.InitialHash
	dbPath := e.cfg.Database.Path
	rootDir := e.cfg.Storage.RootDir
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Simulate a config edit (classify_template changed) followed by a
	// fresh Open over the same database and library root, the way a CLI
	// invocation picks up an edited config file on its next run.
	cfg2 := &config.Config{
		Database: config.Database{Path: dbPath},
		Storage: config.Storage{
			RootDir:          rootDir,
			ClassifyTemplate: "{year}/{category1}",
			RenameTemplate:   "{title}",
			OnImport:         "copy",
		},
	}
	e2, err := Open(cfg2)
	if err != nil {
		t.Fatalf("reopen Engine: %v", err)
	}
	t.Cleanup(func() { e2.Close() })

	preview, err := e2.Rebuild(ctx, "", false, 0)
	if err != nil {
		t.Fatalf("Rebuild preview: %v", err)
	}
	if len(preview) != 1 || !preview[0].Changed {
		t.Fatalf("preview = %#v", preview)
	}

	applied, err := e2.Rebuild(ctx, "", true, 0)
	if err != nil {
		t.Fatalf("Rebuild apply: %v", err)
	}
	if len(applied) != 1 || applied[0].Err != nil {
		t.Fatalf("applied = %#v", applied)
	}

	got, err := e2.GetFile(ctx, f.Key)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if got.Path != applied[0].To {
		t.Fatalf("Path = %q, want %q", got.Path, applied[0].To)
	}
	if got.InitialHash != originalHash {
		t.Fatalf("InitialHash changed: %q -> %q", originalHash, got.InitialHash)
	}
	if _, err := os.Stat(filepath.Join(rootDir, filepath.FromSlash(got.Path))); err != nil {
		t.Fatalf("file not found at new path: %v", err)
	}
}

func TestValidateFilesInPathReportsMissingFile(t *testing.T) {
	e, dir := newTestEngine(t)
	ctx := context.Background()

	src := writeSource(t, dir, "intro.txt", "Introduction text.")
	f, err := e.ImportFile(ctx, src, extract.ImportMetadata{Title: "Intro"})
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	abs := filepath.Join(e.cfg.Storage.RootDir, filepath.FromSlash(f.Path))
	if err := os.Remove(abs); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	report, err := e.ValidateFilesInPath(ctx, "", true, integrity.ReportOnly)
	if err != nil {
		t.Fatalf("ValidateFilesInPath: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Status != integrity.StatusMissing {
		t.Fatalf("Findings = %#v", report.Findings)
	}
}
