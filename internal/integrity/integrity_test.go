package integrity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerdneilsfield/tagbox/internal/config"
	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

func newTestChecker(t *testing.T) (*Checker, *store.SQLiteStore, string) {
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
	return New(s, root), s, root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestValidateReportsMissingFile(t *testing.T) {
	c, s, _ := newTestChecker(t)
	ctx := context.Background()
	if _, err := s.Insert(ctx, store.NewFileOptions{
		Path: "a.pdf", Title: "A", InitialHash: "h1", HashAlgo: "sha256", SizeBytes: 5,
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	report, err := c.ValidateFilesInPath(ctx, "", true, ReportOnly)
	if err != nil {
		t.Fatalf("ValidateFilesInPath: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Status != StatusMissing {
		t.Fatalf("got %#v", report.Findings)
	}
}

func TestValidateDetectsDriftInReportOnlyMode(t *testing.T) {
	c, s, root := newTestChecker(t)
	ctx := context.Background()
	content := "original content"
	writeFile(t, root, "a.pdf", content)
	digest, err := hash.Compute(strings.NewReader(content), hash.SHA256)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	f, err := s.Insert(ctx, store.NewFileOptions{
		Path: "a.pdf", Title: "A", InitialHash: digest, HashAlgo: "sha256", SizeBytes: int64(len(content)),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	writeFile(t, root, "a.pdf", "different content, different length")
	report, err := c.ValidateFilesInPath(ctx, "", true, ReportOnly)
	if err != nil {
		t.Fatalf("ValidateFilesInPath: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Status != StatusDrifted || report.Findings[0].Repaired {
		t.Fatalf("got %#v", report.Findings)
	}

	got, err := s.ByKey(ctx, f.Key, false)
	if err != nil {
		t.Fatalf("ByKey: %v", err)
	}
	if got.InitialHash != digest {
		t.Fatalf("report-only mode should not mutate stored hash, got %q", got.InitialHash)
	}
}

func TestValidateRepairsDriftInRepairMode(t *testing.T) {
	c, s, root := newTestChecker(t)
	ctx := context.Background()
	content := "original content"
	writeFile(t, root, "a.pdf", content)
	digest, err := hash.Compute(strings.NewReader(content), hash.SHA256)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if _, err := s.Insert(ctx, store.NewFileOptions{
		Path: "a.pdf", Title: "A", InitialHash: digest, HashAlgo: "sha256", SizeBytes: int64(len(content)),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	writeFile(t, root, "a.pdf", "different content, different length")
	report, err := c.ValidateFilesInPath(ctx, "", true, Repair)
	if err != nil {
		t.Fatalf("ValidateFilesInPath: %v", err)
	}
	if len(report.Findings) != 1 || !report.Findings[0].Repaired {
		t.Fatalf("got %#v", report.Findings)
	}
}

func TestCheckConfigCompatibilityBootstraps(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg := &config.Config{}
	cfg.Hash.Algorithm = "sha256"
	cfg.Storage.RootDir = "/library"
	cfg.Storage.ClassifyTemplate = "{category1}"
	cfg.Storage.RenameTemplate = "{title}"

	if err := CheckConfigCompatibility(context.Background(), s, cfg); err != nil {
		t.Fatalf("first call should bootstrap, got %v", err)
	}
	if err := CheckConfigCompatibility(context.Background(), s, cfg); err != nil {
		t.Fatalf("second call with same config should pass, got %v", err)
	}
}

func TestCheckConfigCompatibilityDetectsDrift(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg := &config.Config{}
	cfg.Hash.Algorithm = "sha256"
	cfg.Storage.RootDir = "/library"
	cfg.Storage.ClassifyTemplate = "{category1}"
	cfg.Storage.RenameTemplate = "{title}"
	if err := CheckConfigCompatibility(context.Background(), s, cfg); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	cfg.Hash.Algorithm = "blake3"
	err = CheckConfigCompatibility(context.Background(), s, cfg)
	var driftErr *tberr.ConfigDriftError
	if !errors.As(err, &driftErr) {
		t.Fatalf("expected *tberr.ConfigDriftError, got %v", err)
	}
	if driftErr.Key != "hash_algorithm" {
		t.Fatalf("got %#v", driftErr)
	}
}
