// Package integrity implements the validator component: reconciling the
// database against the on-disk library tree, and detecting drift between
// a loaded configuration and the values recorded at bootstrap time.
package integrity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/config"
	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// Mode selects what validate_files_in_path does when it finds hash drift.
type Mode string

const (
	// ReportOnly records drift in the Report without touching the store.
	ReportOnly Mode = "report-only"
	// Repair updates current_hash and appends a history row.
	Repair Mode = "repair"
)

// Status classifies one file's outcome in a validation pass.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusDrifted Status = "drifted"
)

// Finding is one file's validation outcome.
type Finding struct {
	Key      string
	Path     string
	Status   Status
	OldHash  string
	NewHash  string
	Repaired bool
}

// Report summarizes a validate_files_in_path pass.
type Report struct {
	Checked  int
	Findings []Finding
}

// Checker validates on-disk state against the store.
type Checker struct {
	store   store.Store
	rootDir string
}

// New builds a Checker rooted at rootDir (the configured storage root).
func New(st store.Store, rootDir string) *Checker {
	return &Checker{store: st, rootDir: rootDir}
}

// ValidateFilesInPath walks every live file whose path resolves under root
// (root is relative to the library root; "" means the whole library),
// checking existence and, on a size mismatch, recomputed hash.
func (c *Checker) ValidateFilesInPath(ctx context.Context, root string, recursive bool, mode Mode) (*Report, error) {
	files, err := c.store.List(ctx, root, false, 0, 0)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(root, "/")
	report := &Report{}
	for _, f := range files {
		rel := f.Path
		if prefix != "" {
			var ok bool
			if rel, ok = strings.CutPrefix(f.Path, prefix+"/"); !ok {
				continue
			}
		}
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		report.Checked++

		finding, err := c.checkOne(ctx, f, mode)
		if err != nil {
			return nil, err
		}
		if finding.Status != StatusOK {
			report.Findings = append(report.Findings, finding)
		}
	}
	return report, nil
}

func (c *Checker) checkOne(ctx context.Context, f store.File, mode Mode) (Finding, error) {
	abs := filepath.Join(c.rootDir, filepath.FromSlash(f.Path))
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return Finding{Key: f.Key, Path: f.Path, Status: StatusMissing}, nil
	}
	if err != nil {
		return Finding{}, fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}

	if info.Size() == f.SizeBytes {
		return Finding{Key: f.Key, Path: f.Path, Status: StatusOK}, nil
	}

	digest, err := hash.File(abs, hash.Algorithm(f.HashAlgo))
	if err != nil {
		return Finding{}, fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	if digest == f.CurrentHash {
		return Finding{Key: f.Key, Path: f.Path, Status: StatusOK}, nil
	}

	finding := Finding{Key: f.Key, Path: f.Path, Status: StatusDrifted, OldHash: f.CurrentHash, NewHash: digest}
	if mode == Repair {
		if err := c.store.UpdateHash(ctx, f.Key, f.HashAlgo, digest, info.Size()); err != nil {
			return Finding{}, err
		}
		finding.Repaired = true
	}
	return finding, nil
}

// CheckConfigCompatibility compares cfg's hash algorithm, storage root, and
// template placeholders against the values system_config recorded when the
// library was last initialized, raising a *tberr.ConfigDriftError per
// mismatch (only the first is returned; callers re-run after fixing it).
func CheckConfigCompatibility(ctx context.Context, st store.SystemConfig, cfg *config.Config) error {
	checks := []struct {
		key, configured string
	}{
		{"hash_algorithm", string(cfg.HashAlgorithm())},
		{"storage_root_dir", cfg.Storage.RootDir},
		{"storage_classify_template", cfg.Storage.ClassifyTemplate},
		{"storage_rename_template", cfg.Storage.RenameTemplate},
	}

	for _, chk := range checks {
		stored, ok, err := st.SystemConfigGet(ctx, chk.key)
		if err != nil {
			return err
		}
		if !ok {
			if err := st.SystemConfigSet(ctx, chk.key, chk.configured); err != nil {
				return err
			}
			continue
		}
		if stored != chk.configured {
			return &tberr.ConfigDriftError{Key: chk.key, Stored: stored, Configured: chk.configured}
		}
	}
	return nil
}
