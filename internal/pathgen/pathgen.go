// Package pathgen renders a file's library-relative destination path from
// its metadata and two configured templates: a "classify" template that
// produces the directory prefix, and a "rename" template that produces the
// file stem. Templates use a closed set of placeholders, validated at
// load time rather than discovered at render time - the same closed-
// enumeration discipline the store package applies to FTS-projected
// columns, applied here to templates instead of SQL columns.
package pathgen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// Metadata is the subset of a file's metadata needed to render placeholders.
type Metadata struct {
	Title       string
	Authors     []string
	Year        int // 0 means unset
	Publisher   string
	Category1   string
	Category2   string
	Category3   string
	Filename    string // original filename stem, without extension
	InitialHash string // used for collision-suffix generation
}

// placeholderPattern matches {name} tokens in a template string.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// knownPlaceholders is the closed set of recognised template tokens.
var knownPlaceholders = map[string]bool{
	"title":     true,
	"authors":   true,
	"year":      true,
	"publisher": true,
	"category1": true,
	"category2": true,
	"category3": true,
	"filename":  true,
}

// Options configures rendering behaviour: the separator joining multiple
// authors, the sentinel replacing filesystem-forbidden characters, and the
// maximum length of any single rendered path segment.
type Options struct {
	AuthorSeparator string
	Sentinel        string
	MaxSegmentLen   int
}

// DefaultOptions returns sensible rendering defaults.
func DefaultOptions() Options {
	return Options{
		AuthorSeparator: ", ",
		Sentinel:        "_",
		MaxSegmentLen:   200,
	}
}

// forbiddenChars covers characters disallowed by at least one of
// Windows, macOS, and Linux filesystems: \ / : * ? " < > | and control chars.
var forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

// ValidateTemplate checks that every placeholder in tmpl is recognised,
// returning tberr.ErrConfigError on the first unknown token. Intended to be
// called from config validation at load time, not at import time.
func ValidateTemplate(tmpl string) error {
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if !knownPlaceholders[m[1]] {
			return fmt.Errorf("%w: unknown path placeholder {%s}", tberr.ErrConfigError, m[1])
		}
	}
	return nil
}

// render expands every placeholder in tmpl against md, sanitises forbidden
// characters, and clamps each segment to opts.MaxSegmentLen. A "/" written
// in the template separates path segments; a "/" inside a substituted value
// is replaced by the sentinel like any other forbidden character, and an
// empty segment becomes the sentinel.
func render(tmpl string, md Metadata, opts Options) (string, error) {
	if err := ValidateTemplate(tmpl); err != nil {
		return "", err
	}

	value := func(token string) string {
		name := token[1 : len(token)-1]
		switch name {
		case "title":
			return md.Title
		case "authors":
			return strings.Join(md.Authors, opts.AuthorSeparator)
		case "year":
			if md.Year == 0 {
				return ""
			}
			return fmt.Sprintf("%d", md.Year)
		case "publisher":
			return md.Publisher
		case "category1":
			return md.Category1
		case "category2":
			return md.Category2
		case "category3":
			return md.Category3
		case "filename":
			return md.Filename
		default:
			return token // unreachable: ValidateTemplate already rejected unknowns
		}
	}
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		return strings.ReplaceAll(value(token), "/", opts.Sentinel)
	})

	segs := strings.Split(out, "/")
	for i, s := range segs {
		s = strings.TrimSpace(forbiddenChars.ReplaceAllString(s, opts.Sentinel))
		if s == "" {
			s = opts.Sentinel
		}
		if opts.MaxSegmentLen > 0 && len(s) > opts.MaxSegmentLen {
			s = s[:opts.MaxSegmentLen]
		}
		segs[i] = s
	}
	out = strings.Join(segs, "/")
	return out, nil
}

// Generate renders the library-relative path (directory + stem + original
// extension) from classify and rename templates. ext should include the
// leading dot (e.g. ".pdf"), or be empty for extensionless files.
func Generate(md Metadata, classifyTemplate, renameTemplate, ext string, opts Options) (string, error) {
	dir, err := render(classifyTemplate, md, opts)
	if err != nil {
		return "", err
	}
	stem, err := render(renameTemplate, md, opts)
	if err != nil {
		return "", err
	}

	rel := stem + ext
	if dir != "" {
		rel = filepath.ToSlash(filepath.Join(dir, stem+ext))
	}
	return rel, nil
}

// ResolveCollision appends a short fingerprint suffix (drawn from the
// file's initial_hash) to a path that already exists, before the
// extension. Called by the importer/editor when the generated path
// collides with an existing live row.
func ResolveCollision(rel, initialHash string) string {
	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(rel, ext)
	suffix := initialHash
	if len(suffix) > 7 {
		suffix = suffix[:7]
	}
	return fmt.Sprintf("%s-%s%s", base, suffix, ext)
}
