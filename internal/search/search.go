// Package search translates a parsed query.Node tree into parameterized SQL
// against the files table and its relations, plus the files_fts virtual
// table for free-text terms. It builds SQL text only - execution happens
// through store.Searcher.
package search

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/tagbox/internal/query"
)

// SortField is one of the DSL's recognized sort keys.
type SortField string

const (
	SortImportedAt  SortField = "imported_at"
	SortUpdatedAt   SortField = "updated_at"
	SortTitle       SortField = "title"
	SortYear        SortField = "year"
	SortAccessCount SortField = "access_count"
	SortRank        SortField = "rank"
)

// Direction is ascending or descending sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Options controls pagination, sorting and soft-delete visibility for a
// search or fuzzy_search call.
type Options struct {
	Offset         int       `json:"offset,omitempty"`
	Limit          int       `json:"limit,omitempty"`
	SortBy         SortField `json:"sort_by,omitempty"`
	SortDirection  Direction `json:"sort_direction,omitempty"`
	IncludeDeleted bool      `json:"include_deleted,omitempty"`
}

const fileColumns = `f.id, f.key, f.path, f.title, f.year, f.publisher, f.source_url, f.category1, f.category2, f.category3,
	f.summary, f.full_text, f.initial_hash, f.current_hash, f.hash_algo, f.size_bytes, f.file_metadata, f.type_metadata,
	f.created_at, f.updated_at, f.deleted_at`

// Plan is a fully built query: the SELECT used to fetch the page, the
// COUNT used for total_count, and their shared parameters.
type Plan struct {
	SelectSQL string
	CountSQL  string
	Args      []any
	UsesMatch bool
}

// Build compiles node and opts into a Plan ready for store.Query.
func Build(node query.Node, opts Options) (Plan, error) {
	where, args, usesMatch, err := build(node)
	if err != nil {
		return Plan{}, err
	}

	clauses := []string{where}
	if !opts.IncludeDeleted {
		clauses = append(clauses, "f.deleted_at IS NULL")
	}
	whereSQL := strings.Join(clauses, " AND ")

	order := orderBy(opts, usesMatch)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM files f WHERE %s ORDER BY %s LIMIT %d OFFSET %d",
		fileColumns, whereSQL, order, limit, offset)
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM files f WHERE %s", whereSQL)

	return Plan{SelectSQL: selectSQL, CountSQL: countSQL, Args: args, UsesMatch: usesMatch}, nil
}

func orderBy(opts Options, usesMatch bool) string {
	dir := "DESC"
	if opts.SortDirection == Asc {
		dir = "ASC"
	}

	var primary string
	switch opts.SortBy {
	case SortImportedAt:
		primary = "f.created_at " + dir
	case SortTitle:
		primary = "f.title " + dir
	case SortYear:
		primary = "f.year " + dir
	case SortAccessCount:
		primary = "(SELECT access_count FROM file_access_stats WHERE file_id = f.id) " + dir
	case SortRank:
		// Orders by file id when the query has a MATCH clause and by
		// updated_at DESC otherwise; the FTS5 rank value itself is not read.
		if usesMatch {
			primary = "f.id " + dir
		} else {
			primary = "f.updated_at DESC"
		}
	case SortUpdatedAt:
		primary = "f.updated_at " + dir
	default:
		primary = "f.updated_at DESC"
	}
	return primary + ", f.id ASC"
}

// isPureText reports whether node is built entirely from free-text/phrase
// leaves, meaning it can collapse into a single FTS MATCH expression.
func isPureText(n query.Node) bool {
	switch v := n.(type) {
	case query.FreeText, query.Phrase:
		return true
	case query.And:
		return isPureText(v.Left) && isPureText(v.Right)
	case query.Or:
		return isPureText(v.Left) && isPureText(v.Right)
	default:
		return false
	}
}

func matchExpr(n query.Node) string {
	switch v := n.(type) {
	case query.FreeText:
		if prefix, ok := strings.CutSuffix(v.Text, "*"); ok && prefix != "" {
			return ftsLiteral(prefix) + "*"
		}
		return ftsLiteral(v.Text)
	case query.Phrase:
		return ftsLiteral(v.Text)
	case query.And:
		return "(" + matchExpr(v.Left) + " AND " + matchExpr(v.Right) + ")"
	case query.Or:
		return "(" + matchExpr(v.Left) + " OR " + matchExpr(v.Right) + ")"
	}
	return ""
}

func ftsLiteral(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func build(n query.Node) (string, []any, bool, error) {
	if isPureText(n) {
		return "f.id IN (SELECT rowid FROM files_fts WHERE files_fts MATCH ?)", []any{matchExpr(n)}, true, nil
	}

	switch v := n.(type) {
	case query.FieldClause:
		return buildFieldClause(v)
	case query.YearRange:
		return buildYearRange(v)
	case query.And:
		lw, la, lm, err := build(v.Left)
		if err != nil {
			return "", nil, false, err
		}
		rw, ra, rm, err := build(v.Right)
		if err != nil {
			return "", nil, false, err
		}
		return "(" + lw + " AND " + rw + ")", append(la, ra...), lm || rm, nil
	case query.Or:
		lw, la, lm, err := build(v.Left)
		if err != nil {
			return "", nil, false, err
		}
		rw, ra, rm, err := build(v.Right)
		if err != nil {
			return "", nil, false, err
		}
		return "(" + lw + " OR " + rw + ")", append(la, ra...), lm || rm, nil
	case query.FreeText:
		return "f.id IN (SELECT rowid FROM files_fts WHERE files_fts MATCH ?)", []any{matchExpr(v)}, true, nil
	case query.Phrase:
		return "f.id IN (SELECT rowid FROM files_fts WHERE files_fts MATCH ?)", []any{matchExpr(v)}, true, nil
	default:
		return "", nil, false, fmt.Errorf("search: unhandled node type %T", n)
	}
}

func wrapNegated(sql string, negated, isExists bool) string {
	if !negated {
		return sql
	}
	if isExists {
		return "NOT " + sql
	}
	return "NOT (" + sql + ")"
}

func buildFieldClause(fc query.FieldClause) (string, []any, bool, error) {
	switch fc.Key {
	case "tag":
		sql := `EXISTS (SELECT 1 FROM file_tags ft JOIN tags t ON t.id = ft.tag_id
			WHERE ft.file_id = f.id AND t.deleted_at IS NULL AND (t.path = ? OR t.path LIKE ?))`
		return wrapNegated(sql, fc.Negated, true), []any{fc.Value, fc.Value + "/%"}, false, nil
	case "author":
		sql := `EXISTS (SELECT 1 FROM file_authors fa JOIN authors a ON a.id = fa.author_id
			WHERE fa.file_id = f.id AND a.deleted_at IS NULL AND a.name LIKE ? COLLATE NOCASE)`
		return wrapNegated(sql, fc.Negated, true), []any{"%" + fc.Value + "%"}, false, nil
	case "title":
		sql := `f.title LIKE ? COLLATE NOCASE`
		return wrapNegated(sql, fc.Negated, false), []any{"%" + fc.Value + "%"}, false, nil
	case "publisher":
		sql := `f.publisher LIKE ? COLLATE NOCASE`
		return wrapNegated(sql, fc.Negated, false), []any{"%" + fc.Value + "%"}, false, nil
	case "category":
		if prefix, ok := strings.CutSuffix(fc.Value, "/*"); ok {
			sql := `(f.category1 LIKE ? OR f.category2 LIKE ? OR f.category3 LIKE ?)`
			pat := prefix + "/%"
			return wrapNegated(sql, fc.Negated, false), []any{pat, pat, pat}, false, nil
		}
		sql := `(f.category1 = ? OR f.category2 = ? OR f.category3 = ?)`
		return wrapNegated(sql, fc.Negated, false), []any{fc.Value, fc.Value, fc.Value}, false, nil
	case "ext":
		ext := strings.TrimPrefix(fc.Value, ".")
		sql := `f.path LIKE ?`
		return wrapNegated(sql, fc.Negated, false), []any{"%." + ext}, false, nil
	case "hash":
		// Matches initial_hash only; current_hash (which changes on
		// rehash) is not queried here.
		sql := `f.initial_hash = ?`
		return wrapNegated(sql, fc.Negated, false), []any{fc.Value}, false, nil
	case "id":
		sql := `f.key = ?`
		return wrapNegated(sql, fc.Negated, false), []any{fc.Value}, false, nil
	default:
		return "", nil, false, fmt.Errorf("search: unrecognized field key %q", fc.Key)
	}
}

func buildYearRange(yr query.YearRange) (string, []any, bool, error) {
	var sql string
	var args []any
	switch yr.Op {
	case "..":
		sql = `f.year BETWEEN ? AND ?`
		args = []any{yr.Lo, yr.Hi}
	case ">":
		sql = `f.year > ?`
		args = []any{yr.Lo}
	case ">=":
		sql = `f.year >= ?`
		args = []any{yr.Lo}
	case "<":
		sql = `f.year < ?`
		args = []any{yr.Lo}
	case "<=":
		sql = `f.year <= ?`
		args = []any{yr.Lo}
	default:
		return "", nil, false, fmt.Errorf("search: unrecognized year operator %q", yr.Op)
	}
	return wrapNegated(sql, yr.Negated, false), args, false, nil
}

// FuzzyNode builds a prefix-match query.Node for autocomplete over every
// FTS-indexed field, used by fuzzy_search instead of the full DSL parser.
func FuzzyNode(partial string) query.Node {
	return query.FreeText{Text: strings.TrimSpace(partial) + "*"}
}
