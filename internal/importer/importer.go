// Package importer orchestrates the hash -> extract -> pathgen ->
// transactional-insert pipeline that turns an arbitrary source file into a
// catalogued library entry. A single import is one pipeline run; a batch
// import fans the hash/extract phase out across a worker pool sized by
// runtime.NumCPU() and then commits sequentially, since the store is a
// single-writer.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/pathgen"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

// OnImport selects how a source file is relocated into the library root.
type OnImport string

const (
	Copy    OnImport = "copy"
	Move    OnImport = "move"
	Symlink OnImport = "symlink"
)

// Options configures an Importer.
type Options struct {
	RootDir          string
	ClassifyTemplate string
	RenameTemplate   string
	PathgenOptions   pathgen.Options
	HashAlgo         hash.Algorithm
	OnImport         OnImport
	PreferJSON       bool
	FallbackPDF      bool
	DefaultCategory  string
	Workers          int // <= 0 means runtime.NumCPU()
}

// Importer runs the import pipeline against a store and a library root.
type Importer struct {
	store     store.Store
	extractor extract.Extractor
	opts      Options
}

// New builds an Importer. extractor is typically an *extract.Chain wired
// with a structured-document extractor, but any Extractor works.
func New(st store.Store, extractor extract.Extractor, opts Options) *Importer {
	return &Importer{store: st, extractor: extractor, opts: opts}
}

// Result carries one file's outcome within a batch import. Err is non-nil
// for a per-file failure; the batch itself never fails as a whole.
type Result struct {
	Path string
	File *store.File
	Err  error
}

// ExtractMetainfo runs the configured extractor chain against path without
// touching the store, for callers that want to preview or edit metadata
// before importing.
func (imp *Importer) ExtractMetainfo(ctx context.Context, path string) (extract.ImportMetadata, error) {
	md, err := imp.extractor.Extract(ctx, path, extract.Config{
		PreferJSON:  imp.opts.PreferJSON,
		FallbackPDF: imp.opts.FallbackPDF,
	})
	if err != nil {
		return extract.ImportMetadata{}, fmt.Errorf("%w: %w", tberr.ErrMetaExtractionFailed, err)
	}
	return md, nil
}

// prepared is the outcome of phase one (hash + extract) for a single file,
// ready for phase two's sequential commit.
type prepared struct {
	path   string
	digest string
	meta   extract.ImportMetadata
	size   int64
	err    error
}

// prepare runs the parallel phase of the pipeline: stat, hash, and
// metadata resolution. It never touches the store.
func (imp *Importer) prepare(ctx context.Context, path string, override extract.ImportMetadata) prepared {
	info, err := os.Stat(path)
	if err != nil {
		return prepared{path: path, err: fmt.Errorf("%w: stat %s: %w", tberr.ErrIOFailure, path, err)}
	}

	digest, err := hash.File(path, imp.opts.HashAlgo)
	if err != nil {
		return prepared{path: path, err: err}
	}

	extracted, err := imp.ExtractMetainfo(ctx, path)
	if err != nil {
		return prepared{path: path, err: err}
	}
	meta := extracted.Merge(override)
	if meta.Category1 == "" {
		meta.Category1 = imp.opts.DefaultCategory
	}

	return prepared{path: path, digest: digest, meta: meta, size: info.Size()}
}

// ImportFile runs the full single-file pipeline: hash, duplicate check,
// metadata resolution, path generation, transactional insert, and the
// on-disk relocation. override fields win over extracted metadata.
func (imp *Importer) ImportFile(ctx context.Context, path string, override extract.ImportMetadata) (*store.File, error) {
	p := imp.prepare(ctx, path, override)
	if p.err != nil {
		return nil, p.err
	}
	return imp.commit(ctx, p)
}

// commit performs steps 2-6 of the pipeline (duplicate check, path
// generation, transactional insert, relocation) once prepare has produced a
// digest and resolved metadata.
func (imp *Importer) commit(ctx context.Context, p prepared) (*store.File, error) {
	if _, err := imp.store.ByInitialHash(ctx, string(imp.opts.HashAlgo), p.digest); err == nil {
		return nil, fmt.Errorf("%w: %s", tberr.ErrDuplicateHash, p.path)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	meta := p.meta
	if meta.Title == "" {
		meta.Title = filenameStem(p.path)
	}
	if err := validate.Title(meta.Title); err != nil {
		return nil, err
	}

	relPath, err := imp.renderPath(ctx, meta, p.path, p.digest)
	if err != nil {
		return nil, err
	}

	f, err := imp.store.Insert(ctx, store.NewFileOptions{
		Path:         relPath,
		Title:        meta.Title,
		Year:         meta.Year,
		Publisher:    meta.Publisher,
		SourceURL:    meta.SourceURL,
		Category1:    meta.Category1,
		Category2:    meta.Category2,
		Category3:    meta.Category3,
		Summary:      meta.Summary,
		InitialHash:  p.digest,
		HashAlgo:     string(imp.opts.HashAlgo),
		SizeBytes:    p.size,
		AuthorNames:  meta.Authors,
		TagPaths:     meta.Tags,
		FullText:     meta.FullText,
		FileMetadata: meta.FileMetadata,
		TypeMetadata: meta.TypeMetadata,
	})
	if err != nil {
		return nil, err
	}

	if err := imp.relocate(p.path, relPath); err != nil {
		// The database row already committed; a physical placement failure
		// does not orphan the catalogue entry. Record it for the validator
		// to pick up rather than failing an otherwise-successful import.
		_ = imp.store.AppendHistory(ctx, f.ID, "repair needed", err.Error())
	}

	return f, nil
}

// renderPath renders the destination path and resolves a collision against
// an existing live row by appending the fingerprint suffix.
func (imp *Importer) renderPath(ctx context.Context, meta extract.ImportMetadata, srcPath, digest string) (string, error) {
	md := pathgen.Metadata{
		Title:       meta.Title,
		Authors:     meta.Authors,
		Year:        meta.Year,
		Publisher:   meta.Publisher,
		Category1:   meta.Category1,
		Category2:   meta.Category2,
		Category3:   meta.Category3,
		Filename:    filenameStem(srcPath),
		InitialHash: digest,
	}
	ext := filepath.Ext(srcPath)
	rel, err := pathgen.Generate(md, imp.opts.ClassifyTemplate, imp.opts.RenameTemplate, ext, imp.opts.PathgenOptions)
	if err != nil {
		return "", fmt.Errorf("%w: %w", tberr.ErrConfigError, err)
	}

	if existing, err := imp.store.ByPath(ctx, rel, false); err == nil && existing != nil {
		rel = pathgen.ResolveCollision(rel, digest)
	}
	return rel, nil
}

func filenameStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// relocate places srcPath at <rootDir>/<relPath> per the configured
// disposition (copy, move, or symlink).
func (imp *Importer) relocate(srcPath, relPath string) error {
	dst := filepath.Join(imp.opts.RootDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}

	switch imp.opts.OnImport {
	case Move:
		if err := os.Rename(srcPath, dst); err != nil {
			if err := copyFile(srcPath, dst); err != nil {
				return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
			}
			if err := os.Remove(srcPath); err != nil {
				return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
			}
		}
	case Symlink:
		abs, err := filepath.Abs(srcPath)
		if err != nil {
			return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
		}
		if err := os.Symlink(abs, dst); err != nil {
			return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
		}
	default: // Copy
		if err := copyFile(srcPath, dst); err != nil {
			return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// ImportFiles runs the two-phase batched form: phase one hashes and
// extracts concurrently across a pool sized by opts.Workers (default
// runtime.NumCPU()); phase two commits sequentially since the store
// serializes writers. A failure on one file never aborts the others -
// every input path produces a Result. onProgress, if non-nil, is called
// once per input path as phase two completes it; callers that don't care
// about incremental feedback pass nil.
func (imp *Importer) ImportFiles(ctx context.Context, paths []string, overrides map[string]extract.ImportMetadata, onProgress func(Result)) []Result {
	prep := make([]prepared, len(paths))

	limit := imp.opts.Workers
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			prep[i] = imp.prepare(ctx, path, overrides[path])
			return nil
		})
	}
	_ = g.Wait() // per-file errors are carried in prep[i].err, never raised here

	results := make([]Result, len(paths))
	for i, p := range prep {
		results[i] = Result{Path: p.path}
		if p.err != nil {
			results[i].Err = p.err
		} else {
			f, err := imp.commit(ctx, p)
			results[i].File = f
			results[i].Err = err
		}
		if onProgress != nil {
			onProgress(results[i])
		}
	}
	return results
}
