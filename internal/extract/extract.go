// Package extract produces proposed import metadata from a source file,
// following a three-step resolution order: a JSON sidecar wins if present
// and enabled, then a structured-document extractor (PDF today), then
// filename derivation as the guaranteed fallback. Extraction never fails
// outright - a malformed structured file degrades to filename derivation
// and records a non-fatal Diagnostic instead.
package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ImportMetadata is the proposed metadata for a file about to be imported.
// Collections are always non-nil (empty slice rather than nil).
type ImportMetadata struct {
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Year      int      `json:"year,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Category1 string   `json:"category1,omitempty"`
	Category2 string   `json:"category2,omitempty"`
	Category3 string   `json:"category3,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	FullText  string   `json:"full_text,omitempty"`

	// FileMetadata is an opaque, format-specific JSON blob (e.g. the raw
	// sidecar document); TypeMetadata is content-type-specific (e.g. PDF
	// page count). Neither is parsed beyond this package.
	FileMetadata string `json:"file_metadata,omitempty"`
	TypeMetadata string `json:"type_metadata,omitempty"`

	// Diagnostics records non-fatal extraction problems (e.g. a malformed
	// sidecar that forced a fallback). Never causes extraction to fail.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Merge overlays non-empty fields of override onto m, implementing the
// "argument wins" merge rule from the importer's pipeline step 3: caller-
// supplied metadata takes precedence over extracted metadata field by field.
func (m ImportMetadata) Merge(override ImportMetadata) ImportMetadata {
	out := m
	if override.Title != "" {
		out.Title = override.Title
	}
	if len(override.Authors) > 0 {
		out.Authors = override.Authors
	}
	if override.Year != 0 {
		out.Year = override.Year
	}
	if override.Publisher != "" {
		out.Publisher = override.Publisher
	}
	if override.SourceURL != "" {
		out.SourceURL = override.SourceURL
	}
	if len(override.Tags) > 0 {
		out.Tags = override.Tags
	}
	if override.Category1 != "" {
		out.Category1 = override.Category1
	}
	if override.Category2 != "" {
		out.Category2 = override.Category2
	}
	if override.Category3 != "" {
		out.Category3 = override.Category3
	}
	if override.Summary != "" {
		out.Summary = override.Summary
	}
	if override.FullText != "" {
		out.FullText = override.FullText
	}
	if override.FileMetadata != "" {
		out.FileMetadata = override.FileMetadata
	}
	if override.TypeMetadata != "" {
		out.TypeMetadata = override.TypeMetadata
	}
	out.Diagnostics = append(out.Diagnostics, override.Diagnostics...)
	return out
}

func empty() ImportMetadata {
	return ImportMetadata{Authors: []string{}, Tags: []string{}}
}

// Config controls which resolution steps are attempted.
type Config struct {
	PreferJSON  bool
	FallbackPDF bool
}

// Extractor produces metadata for a single file. Implementations are
// pluggable; format-specific extractors beyond this interface are an
// external collaborator.
type Extractor interface {
	Extract(ctx context.Context, path string, cfg Config) (ImportMetadata, error)
}

// splitAuthors splits a raw author string on commas/semicolons and trims
// whitespace, per the "authors split on comma/semicolon and trimmed" rule.
func splitAuthors(raw string) []string {
	if raw == "" {
		return []string{}
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FilenameExtractor derives a title from the filename stem. It never
// fails - it is the guaranteed terminal step of the resolution chain.
type FilenameExtractor struct{}

func (FilenameExtractor) Extract(_ context.Context, path string, _ Config) (ImportMetadata, error) {
	md := empty()
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	md.Title = stem
	return md, nil
}

// jsonSidecar is the shape of a `<stem>.json` sidecar file.
type jsonSidecar struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Author    string   `json:"author"`
	Year      int      `json:"year"`
	Publisher string   `json:"publisher"`
	SourceURL string   `json:"source_url"`
	Tags      []string `json:"tags"`
	Category1 string   `json:"category1"`
	Category2 string   `json:"category2"`
	Category3 string   `json:"category3"`
	Summary   string   `json:"summary"`
}

// JSONSidecarExtractor reads a sibling JSON file with an identical stem,
// implementing resolution step 1.
type JSONSidecarExtractor struct{}

// sidecarPath returns the path of the JSON sidecar for path.
func sidecarPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".json"
}

// HasSidecar reports whether a JSON sidecar exists for path.
func HasSidecar(path string) bool {
	_, err := os.Stat(sidecarPath(path))
	return err == nil
}

func (JSONSidecarExtractor) Extract(_ context.Context, path string, _ Config) (ImportMetadata, error) {
	md := empty()
	data, err := os.ReadFile(sidecarPath(path))
	if err != nil {
		return md, err
	}

	var sc jsonSidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return md, err
	}

	md.Title = sc.Title
	md.Year = sc.Year
	md.Publisher = sc.Publisher
	md.SourceURL = sc.SourceURL
	md.Category1 = sc.Category1
	md.Category2 = sc.Category2
	md.Category3 = sc.Category3
	md.Summary = sc.Summary
	if len(sc.Authors) > 0 {
		md.Authors = sc.Authors
	} else if sc.Author != "" {
		md.Authors = splitAuthors(sc.Author)
	}
	if sc.Tags != nil {
		md.Tags = sc.Tags
	}
	md.FileMetadata = string(data)
	return md, nil
}

// Chain runs the full three-step resolution order, falling back and
// recording a diagnostic rather than failing whenever a preferred step
// errors.
type Chain struct {
	JSON     JSONSidecarExtractor
	PDF      Extractor // optional; nil disables the structured-document step
	Filename FilenameExtractor
}

// NewChain builds the default resolution chain, wiring pdf as the
// structured-document extractor (nil is valid and simply skips that step).
func NewChain(pdf Extractor) *Chain {
	return &Chain{PDF: pdf}
}

func isStructuredDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".epub"
}

func (c *Chain) Extract(ctx context.Context, path string, cfg Config) (ImportMetadata, error) {
	if cfg.PreferJSON && HasSidecar(path) {
		md, err := c.JSON.Extract(ctx, path, cfg)
		if err == nil {
			return md, nil
		}
		fallback, _ := c.Filename.Extract(ctx, path, cfg)
		fallback.Diagnostics = append(fallback.Diagnostics,
			"malformed JSON sidecar, fell back to filename: "+err.Error())
		return fallback, nil
	}

	if cfg.FallbackPDF && c.PDF != nil && isStructuredDocument(path) {
		md, err := c.PDF.Extract(ctx, path, cfg)
		if err == nil {
			return md, nil
		}
		fallback, _ := c.Filename.Extract(ctx, path, cfg)
		fallback.Diagnostics = append(fallback.Diagnostics,
			"structured extraction failed, fell back to filename: "+err.Error())
		return fallback, nil
	}

	return c.Filename.Extract(ctx, path, cfg)
}
