// Package rebuild recomputes destination paths for already-catalogued
// files against the currently configured templates, previewing or
// applying the moves a template change implies. It fans previews out
// across a worker pool the same way internal/importer fans out its
// hash/extract phase, then applies moves sequentially since the store is
// single-writer.
package rebuild

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nerdneilsfield/tagbox/internal/editor"
	"github.com/nerdneilsfield/tagbox/internal/store"
)

// Move describes one file's current and recomputed path.
type Move struct {
	Key     string
	From    string
	To      string
	Changed bool
	Err     error
}

// Rebuilder previews and applies template-driven path moves.
type Rebuilder struct {
	store   store.Reader
	editor  *editor.Editor
	workers int
}

// New builds a Rebuilder over st and ed, previewing with up to workers
// goroutines concurrently (workers <= 0 means no limit beyond 1).
func New(st store.Reader, ed *editor.Editor, workers int) *Rebuilder {
	if workers <= 0 {
		workers = 1
	}
	return &Rebuilder{store: st, editor: ed, workers: workers}
}

// Run previews (and, if apply is true, performs) a rebuild. When key is
// empty every non-deleted file is considered; otherwise only that one
// file is. Per-file failures are carried in the returned Move rather than
// aborting the run, matching the importer's per-item failure isolation.
func (r *Rebuilder) Run(ctx context.Context, key string, apply bool) ([]Move, error) {
	keys, err := r.candidateKeys(ctx, key)
	if err != nil {
		return nil, err
	}

	moves := make([]Move, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			from, to, err := r.editor.PreviewMove(gctx, k)
			moves[i] = Move{Key: k, From: from, To: to, Changed: err == nil && from != to, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if !apply {
		return moves, nil
	}
	for i, m := range moves {
		if m.Err != nil || !m.Changed {
			continue
		}
		if err := r.editor.MoveFile(ctx, m.Key); err != nil {
			moves[i].Err = err
		}
	}
	return moves, nil
}

func (r *Rebuilder) candidateKeys(ctx context.Context, key string) ([]string, error) {
	if key != "" {
		if _, err := r.store.ByKey(ctx, key, false); err != nil {
			return nil, err
		}
		return []string{key}, nil
	}

	const pageSize = 500
	var keys []string
	for offset := 0; ; offset += pageSize {
		page, err := r.store.List(ctx, "", false, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list files for rebuild: %w", err)
		}
		for _, f := range page {
			keys = append(keys, f.Key)
		}
		if len(page) < pageSize {
			break
		}
	}
	return keys, nil
}
