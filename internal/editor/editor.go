// Package editor implements the mutation operations on a live file row:
// field updates, soft delete/restore, path rebuilds, access tracking, and
// hash re-verification. It sits above internal/store, adding validation
// and the on-disk side effects the store itself knows nothing about.
package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/hash"
	"github.com/nerdneilsfield/tagbox/internal/pathgen"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tberr"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

// Editor mutates file rows and the on-disk library tree backing them.
type Editor struct {
	store            store.Store
	rootDir          string
	classifyTemplate string
	renameTemplate   string
	pathOpts         pathgen.Options
	hashAlgo         hash.Algorithm
}

// New builds an Editor over st, rooted at rootDir, rendering destination
// paths with the given templates/options and re-hashing with algo.
func New(st store.Store, rootDir, classifyTemplate, renameTemplate string, pathOpts pathgen.Options, algo hash.Algorithm) *Editor {
	return &Editor{
		store:            st,
		rootDir:          rootDir,
		classifyTemplate: classifyTemplate,
		renameTemplate:   renameTemplate,
		pathOpts:         pathOpts,
		hashAlgo:         algo,
	}
}

// UpdateField sets a single named field on the file identified by key.
// Recognized names mirror UpdateFieldSet's fields, lower-cased.
func (e *Editor) UpdateField(ctx context.Context, key, field, value string) error {
	fields, err := fieldSet(field, value)
	if err != nil {
		return err
	}
	return e.Update(ctx, key, fields)
}

func fieldSet(field, value string) (store.UpdateFieldSet, error) {
	var fs store.UpdateFieldSet
	switch field {
	case "title":
		if err := validate.Title(value); err != nil {
			return fs, err
		}
		fs.Title = &value
	case "publisher":
		fs.Publisher = &value
	case "source_url":
		fs.SourceURL = &value
	case "category1":
		fs.Category1 = &value
	case "category2":
		fs.Category2 = &value
	case "category3":
		fs.Category3 = &value
	case "summary":
		fs.Summary = &value
	case "full_text":
		fs.FullText = &value
	case "year":
		var year int
		if value != "" {
			if _, err := fmt.Sscanf(value, "%d", &year); err != nil {
				return fs, fmt.Errorf("%w: invalid year %q", tberr.ErrConfigError, value)
			}
		}
		fs.Year = &year
	default:
		return fs, fmt.Errorf("%w: unrecognized field %q", tberr.ErrConfigError, field)
	}
	return fs, nil
}

// Update validates and applies a sparse field set, then refreshes the FTS
// projection for every field that feeds it and appends an update history row.
func (e *Editor) Update(ctx context.Context, key string, fields store.UpdateFieldSet) error {
	if fields.Title != nil {
		if err := validate.Title(*fields.Title); err != nil {
			return err
		}
	}

	f, err := e.store.ByKey(ctx, key, false)
	if err != nil {
		return err
	}

	if err := e.store.Update(ctx, key, fields); err != nil {
		return err
	}

	if projectedFieldsChanged(fields) {
		if err := e.store.ReindexFTS(ctx, f.ID); err != nil {
			return err
		}
	}

	return e.store.AppendHistory(ctx, f.ID, "update", key)
}

func projectedFieldsChanged(fields store.UpdateFieldSet) bool {
	return fields.Title != nil || fields.Publisher != nil || fields.Summary != nil || fields.FullText != nil
}

// SoftDelete flags the file deleted, recording reason on the history row.
func (e *Editor) SoftDelete(ctx context.Context, key, reason string) error {
	return e.store.SoftDelete(ctx, key, reason)
}

// Restore reverses SoftDelete.
func (e *Editor) Restore(ctx context.Context, key string) error {
	return e.store.Restore(ctx, key)
}

// RecordAccess increments the file's access counter.
func (e *Editor) RecordAccess(ctx context.Context, key string) error {
	return e.store.RecordAccess(ctx, key)
}

// UpdateFileHash rehashes the on-disk file backing key and records drift.
func (e *Editor) UpdateFileHash(ctx context.Context, key string) error {
	f, err := e.store.ByKey(ctx, key, false)
	if err != nil {
		return err
	}
	abs := filepath.Join(e.rootDir, filepath.FromSlash(f.Path))
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	digest, err := hash.File(abs, e.hashAlgo)
	if err != nil {
		return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	return e.store.UpdateHash(ctx, key, string(e.hashAlgo), digest, info.Size())
}

// previewMove recomputes the file's library-relative path from its current
// metadata and templates without touching anything on disk or in the
// store. It returns the file, its current path, and its recomputed path -
// equal when no move is needed.
func (e *Editor) previewMove(ctx context.Context, key string) (f *store.File, newPath string, err error) {
	f, err = e.store.ByKey(ctx, key, false)
	if err != nil {
		return nil, "", err
	}

	authorNames := make([]string, len(f.Authors))
	for i, a := range f.Authors {
		authorNames[i] = a.Name
	}

	md := pathgen.Metadata{
		Title:       f.Title,
		Authors:     authorNames,
		Year:        f.Year,
		Publisher:   f.Publisher,
		Category1:   f.Category1,
		Category2:   f.Category2,
		Category3:   f.Category3,
		Filename:    strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path)),
		InitialHash: f.InitialHash,
	}
	ext := filepath.Ext(f.Path)
	newPath, err = pathgen.Generate(md, e.classifyTemplate, e.renameTemplate, ext, e.pathOpts)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", tberr.ErrConfigError, err)
	}

	if newPath == f.Path {
		return f, newPath, nil
	}

	if existing, err := e.store.ByPath(ctx, newPath, false); err == nil && existing != nil {
		newPath = pathgen.ResolveCollision(newPath, f.InitialHash)
	}
	return f, newPath, nil
}

// PreviewMove reports what MoveFile would do without doing it: the file's
// current path and its recomputed path. Equal paths mean no move is needed.
func (e *Editor) PreviewMove(ctx context.Context, key string) (currentPath, recomputedPath string, err error) {
	f, newPath, err := e.previewMove(ctx, key)
	if err != nil {
		return "", "", err
	}
	return f.Path, newPath, nil
}

// MoveFile recomputes the file's library-relative path from its current
// metadata and templates, moves the on-disk file, and updates the row.
// If the on-disk rename succeeds but the database update fails, the
// partially moved file is moved back before returning.
func (e *Editor) MoveFile(ctx context.Context, key string) error {
	f, newPath, err := e.previewMove(ctx, key)
	if err != nil {
		return err
	}
	if newPath == f.Path {
		return nil
	}

	oldAbs := filepath.Join(e.rootDir, filepath.FromSlash(f.Path))
	newAbs := filepath.Join(e.rootDir, filepath.FromSlash(newPath))

	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}

	if err := e.store.Move(ctx, key, newPath); err != nil {
		if rerr := os.Rename(newAbs, oldAbs); rerr != nil {
			return fmt.Errorf("move rolled back database but failed to restore on-disk file: %w (original: %w)", rerr, err)
		}
		return err
	}
	return nil
}
