package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// PDFExtractor reads document info and page text from PDF files using
// pdfcpu, the pure-Go PDF engine. It implements resolution step 2.
type PDFExtractor struct {
	// WorkDir holds the directory pdfcpu writes its intermediate extracted
	// content into. An empty value uses os.TempDir().
	WorkDir string
}

func (p PDFExtractor) workDir() string {
	if p.WorkDir != "" {
		return p.WorkDir
	}
	return os.TempDir()
}

// Extract opens path with pdfcpu and concatenates per-page extracted
// content into FullText. Title/Authors are left blank; the Chain returns
// this result as is, and the importer fills an empty title from the
// source filename stem.
func (p PDFExtractor) Extract(_ context.Context, path string, _ Config) (ImportMetadata, error) {
	md := empty()

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return md, fmt.Errorf("%w: read pdf context: %w", tberr.ErrMetaExtractionFailed, err)
	}
	if pdfCtx.PageCount == 0 {
		return md, fmt.Errorf("%w: pdf has no pages", tberr.ErrMetaExtractionFailed)
	}

	if tm, err := json.Marshal(struct {
		PageCount int `json:"page_count"`
	}{PageCount: pdfCtx.PageCount}); err == nil {
		md.TypeMetadata = string(tm)
	}

	outDir, err := os.MkdirTemp(p.workDir(), "tagbox-pdf-extract-*")
	if err != nil {
		return md, fmt.Errorf("%w: %w", tberr.ErrIOFailure, err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return md, fmt.Errorf("%w: extract pdf content: %w", tberr.ErrMetaExtractionFailed, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return md, nil
	}
	var text strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.Write(content)
	}
	md.FullText = text.String()

	if md.FullText == "" {
		return md, fmt.Errorf("%w: no text recovered from pdf", tberr.ErrMetaExtractionFailed)
	}
	return md, nil
}
