// Package tagbox is the public library surface for the embeddable
// offline-first file-management engine: a single Engine type aggregating
// the store, importer, search planner, editor, link manager, author
// registry, integrity checker, and path rebuilder behind one
// context-aware API. Front-ends (the CLI, the stdio RPC dispatcher, the
// MCP tool server) are thin adapters over this surface; none of them
// hold any domain logic of their own.
package tagbox

import (
	"context"
	"path/filepath"

	"github.com/nerdneilsfield/tagbox/internal/author"
	"github.com/nerdneilsfield/tagbox/internal/config"
	"github.com/nerdneilsfield/tagbox/internal/editor"
	"github.com/nerdneilsfield/tagbox/internal/extract"
	"github.com/nerdneilsfield/tagbox/internal/history"
	"github.com/nerdneilsfield/tagbox/internal/importer"
	"github.com/nerdneilsfield/tagbox/internal/integrity"
	"github.com/nerdneilsfield/tagbox/internal/link"
	"github.com/nerdneilsfield/tagbox/internal/query"
	"github.com/nerdneilsfield/tagbox/internal/rebuild"
	"github.com/nerdneilsfield/tagbox/internal/search"
	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/tag"
)

// Engine is the single entry point into a TagBox library: one open
// store plus every component layered on top of it. Safe for concurrent
// use by multiple goroutines (see SPEC_FULL's concurrency model) - reads
// fan out across the store's connection pool, writes funnel through the
// store's single-writer transaction helper.
type Engine struct {
	cfg *config.Config

	store     store.Store
	importer  *importer.Importer
	editor    *editor.Editor
	links     *link.Manager
	authors   *author.Registry
	tags      *tag.Manager
	checker   *integrity.Checker
	rebuilder *rebuild.Rebuilder
	history   *history.Viewer
}

// Open initializes (or reopens) the database at cfg.Database.Path and
// wires every component over it. Equivalent to the public surface's
// init_database followed by implicit component construction - there is
// no separate "connect without initializing" mode since Init() itself
// is idempotent on an already-bootstrapped database.
func Open(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns() > 0 {
		st.SetMaxOpenConns(cfg.MaxOpenConns())
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}

	var pdf extract.Extractor
	if cfg.FallbackPDF() {
		pdf = extract.PDFExtractor{}
	}
	chain := extract.NewChain(pdf)

	imp := importer.New(st, chain, importer.Options{
		RootDir:          cfg.Storage.RootDir,
		ClassifyTemplate: cfg.Storage.ClassifyTemplate,
		RenameTemplate:   cfg.Storage.RenameTemplate,
		PathgenOptions:   cfg.PathgenOptions(),
		HashAlgo:         cfg.HashAlgorithm(),
		OnImport:         importer.OnImport(cfg.OnImportMode()),
		PreferJSON:       cfg.PreferJSON(),
		FallbackPDF:      cfg.FallbackPDF(),
		DefaultCategory:  cfg.Import.DefaultCategory,
		Workers:          cfg.Workers(),
	})

	ed := editor.New(st, cfg.Storage.RootDir, cfg.Storage.ClassifyTemplate, cfg.Storage.RenameTemplate, cfg.PathgenOptions(), cfg.HashAlgorithm())

	return &Engine{
		cfg:       cfg,
		store:     st,
		importer:  imp,
		editor:    ed,
		links:     link.New(st),
		authors:   author.New(st),
		tags:      tag.New(st),
		checker:   integrity.New(st, cfg.Storage.RootDir),
		rebuilder: rebuild.New(st, ed, cfg.Workers()),
		history:   history.New(st),
	}, nil
}

// Close releases the underlying database connection.
func (e *Engine) Close() error {
	return e.store.Close()
}

// LoadConfig loads configuration, preferring a local config file over the
// global one. A thin pass-through to internal/config kept on Engine so
// front-ends have a single import for the whole public surface.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// ValidateConfig rejects a nonsensical configuration before it is used
// to Open an Engine.
func ValidateConfig(cfg *config.Config) error {
	return cfg.Validate()
}

// ExtractMetainfo resolves metadata for a file without importing it.
func (e *Engine) ExtractMetainfo(ctx context.Context, path string) (extract.ImportMetadata, error) {
	return e.importer.ExtractMetainfo(ctx, path)
}

// ImportFile catalogues a single file, overriding extracted metadata with
// any non-zero fields in override.
func (e *Engine) ImportFile(ctx context.Context, path string, override extract.ImportMetadata) (*store.File, error) {
	return e.importer.ImportFile(ctx, path, override)
}

// ImportFiles catalogues a batch of files, isolating per-file failures.
// onProgress, if non-nil, is called once per path as it completes.
func (e *Engine) ImportFiles(ctx context.Context, paths []string, overrides map[string]extract.ImportMetadata, onProgress func(importer.Result)) []importer.Result {
	return e.importer.ImportFiles(ctx, paths, overrides, onProgress)
}

// SearchResult is the paginated outcome of Search/FuzzySearch.
type SearchResult struct {
	Entries    []store.File
	TotalCount int64
	Offset     int
	Limit      int
}

// Search parses dsl, plans it, and runs it, returning a page of matches
// plus the total count disregarding pagination.
func (e *Engine) Search(ctx context.Context, dsl string, opts search.Options) (SearchResult, error) {
	node, err := query.Parse(dsl)
	if err != nil {
		return SearchResult{}, err
	}
	return e.runPlan(ctx, node, opts)
}

// FuzzySearch prefix-matches partial against every FTS-indexed field using
// the same planner, for autocomplete-style lookups.
func (e *Engine) FuzzySearch(ctx context.Context, partial string, opts search.Options) (SearchResult, error) {
	return e.runPlan(ctx, search.FuzzyNode(partial), opts)
}

func (e *Engine) runPlan(ctx context.Context, node query.Node, opts search.Options) (SearchResult, error) {
	plan, err := search.Build(node, opts)
	if err != nil {
		return SearchResult{}, err
	}
	files, err := e.store.Query(ctx, plan.SelectSQL, plan.Args)
	if err != nil {
		return SearchResult{}, err
	}
	total, err := e.store.QueryCount(ctx, plan.CountSQL, plan.Args)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Entries: files, TotalCount: total, Offset: opts.Offset, Limit: opts.Limit}, nil
}

// QueryDebugResult exposes the planner's output without executing it.
type QueryDebugResult struct {
	SQL               string `json:"sql"`
	Params            []any  `json:"params,omitempty"`
	EstimatedRowCount int64  `json:"estimated_row_count"`
}

// QueryDebug compiles dsl the same way Search does but returns the plan
// and an estimated row count instead of the matching rows, for operator
// tooling.
func (e *Engine) QueryDebug(ctx context.Context, dsl string, opts search.Options) (QueryDebugResult, error) {
	node, err := query.Parse(dsl)
	if err != nil {
		return QueryDebugResult{}, err
	}
	plan, err := search.Build(node, opts)
	if err != nil {
		return QueryDebugResult{}, err
	}
	count, err := e.store.QueryCount(ctx, plan.CountSQL, plan.Args)
	if err != nil {
		return QueryDebugResult{}, err
	}
	return QueryDebugResult{SQL: plan.SelectSQL, Params: plan.Args, EstimatedRowCount: count}, nil
}

// GetFile retrieves a single file by its external key.
func (e *Engine) GetFile(ctx context.Context, key string) (*store.File, error) {
	return e.store.ByKey(ctx, key, false)
}

// GetFilePath returns the absolute on-disk path for a catalogued file.
func (e *Engine) GetFilePath(ctx context.Context, key string) (string, error) {
	f, err := e.store.ByKey(ctx, key, false)
	if err != nil {
		return "", err
	}
	return joinRoot(e.cfg.Storage.RootDir, f.Path), nil
}

// ListOptions controls List's path-prefix filter, soft-delete visibility,
// and pagination.
type ListOptions struct {
	PathPrefix     string `json:"path_prefix,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// List returns files under opts.PathPrefix without running the DSL at
// all - the filesystem-browsing counterpart to Search.
func (e *Engine) List(ctx context.Context, opts ListOptions) ([]store.File, error) {
	return e.store.List(ctx, opts.PathPrefix, opts.IncludeDeleted, opts.Limit, opts.Offset)
}

// UpdateFile applies a sparse field update to the file identified by key.
func (e *Engine) UpdateFile(ctx context.Context, key string, fields store.UpdateFieldSet) error {
	return e.editor.Update(ctx, key, fields)
}

// MoveFile recomputes and applies key's destination path from its current
// metadata and the engine's configured templates.
func (e *Engine) MoveFile(ctx context.Context, key string) error {
	return e.editor.MoveFile(ctx, key)
}

// SoftDelete marks a file deleted without removing its row or its
// on-disk copy.
func (e *Engine) SoftDelete(ctx context.Context, key, reason string) error {
	return e.editor.SoftDelete(ctx, key, reason)
}

// Restore reverses SoftDelete.
func (e *Engine) Restore(ctx context.Context, key string) error {
	return e.editor.Restore(ctx, key)
}

// RecordAccess increments key's access counter and timestamp.
func (e *Engine) RecordAccess(ctx context.Context, key string) error {
	return e.editor.RecordAccess(ctx, key)
}

// UpdateFileHash rehashes the on-disk file backing key with the engine's
// configured algorithm.
func (e *Engine) UpdateFileHash(ctx context.Context, key string) error {
	return e.editor.UpdateFileHash(ctx, key)
}

// FileHistory returns the append-only audit log for the file identified
// by key, oldest first.
func (e *Engine) FileHistory(ctx context.Context, key string) ([]store.HistoryEntry, error) {
	return e.history.Versions(ctx, key)
}

// FileAccessStats returns the access counter and last-access timestamp
// for the file identified by key.
func (e *Engine) FileAccessStats(ctx context.Context, key string) (*store.AccessStats, error) {
	return e.history.AccessStats(ctx, key)
}

// LinkFiles creates or restores a relation from fromKey to toKey.
func (e *Engine) LinkFiles(ctx context.Context, fromKey, toKey, relation string) (*store.Link, error) {
	return e.links.Link(ctx, fromKey, toKey, relation)
}

// UnlinkFiles removes a single relation between fromKey and toKey.
func (e *Engine) UnlinkFiles(ctx context.Context, fromKey, toKey, relation string) error {
	return e.links.Unlink(ctx, fromKey, toKey, relation)
}

// OutgoingLinks lists every live relation originating at key.
func (e *Engine) OutgoingLinks(ctx context.Context, key string) ([]store.Link, error) {
	return e.links.Outgoing(ctx, key)
}

// IncomingLinks lists every live relation targeting key.
func (e *Engine) IncomingLinks(ctx context.Context, key string) ([]store.Link, error) {
	return e.links.Incoming(ctx, key)
}

// AddAuthor creates a new canonical author identity.
func (e *Engine) AddAuthor(ctx context.Context, name string) (*store.Author, error) {
	return e.authors.Add(ctx, name)
}

// RemoveAuthor soft-deletes an author, leaving alias edges intact.
func (e *Engine) RemoveAuthor(ctx context.Context, key string) error {
	return e.authors.Remove(ctx, key)
}

// MergeAuthors points fromKey at toKey as an alias, rejecting the merge
// if it would form a cycle.
func (e *Engine) MergeAuthors(ctx context.Context, fromKey, toKey string) error {
	return e.authors.Merge(ctx, fromKey, toKey)
}

// AddTag attaches tagPath to the file identified by key.
func (e *Engine) AddTag(ctx context.Context, key, tagPath string) error {
	return e.tags.Add(ctx, key, tagPath)
}

// RemoveTag detaches tagPath from the file identified by key.
func (e *Engine) RemoveTag(ctx context.Context, key, tagPath string) error {
	return e.tags.Remove(ctx, key, tagPath)
}

// ListTags returns every tag attached to the file identified by key.
func (e *Engine) ListTags(ctx context.Context, key string) ([]store.Tag, error) {
	return e.tags.List(ctx, key)
}

// ValidateFilesInPath reconciles the database against the on-disk tree
// rooted at root (relative to the library root; "" means everything).
func (e *Engine) ValidateFilesInPath(ctx context.Context, root string, recursive bool, mode integrity.Mode) (*integrity.Report, error) {
	return e.checker.ValidateFilesInPath(ctx, root, recursive, mode)
}

// CheckConfigCompatibility compares the engine's configuration against
// the operational facts recorded at bootstrap time.
func (e *Engine) CheckConfigCompatibility(ctx context.Context) error {
	return integrity.CheckConfigCompatibility(ctx, e.store, e.cfg)
}

// Rebuild previews (or, if apply is true, performs) a template-driven
// path rebuild. An empty key rebuilds every live file; workers bounds
// the preview fan-out (<=0 uses the engine's configured default).
func (e *Engine) Rebuild(ctx context.Context, key string, apply bool, workers int) ([]rebuild.Move, error) {
	if workers <= 0 {
		workers = e.cfg.Workers()
	}
	rb := rebuild.New(e.store, e.editor, workers)
	return rb.Run(ctx, key, apply)
}

func joinRoot(root, relPath string) string {
	return filepath.Join(root, filepath.FromSlash(relPath))
}
