// search.go implements Searcher. The store itself holds no query-language
// knowledge - internal/search builds parameterised SQL against base tables
// and the files_fts virtual table, and this file is its sole execution
// point plus the FTS (re)projection helper every writer calls after a
// projected-field change.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Query runs sqlText (produced by internal/search) and scans every
// resulting row as a File, loading associations for each.
func (s *SQLiteStore) Query(ctx context.Context, sqlText string, args []any) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("run search query: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range files {
		if err := s.loadAssociations(ctx, &files[i]); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// QueryCount runs sqlText (the COUNT companion of a Query plan) and
// returns the single integer result.
func (s *SQLiteStore) QueryCount(ctx context.Context, sqlText string, args []any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("run count query: %w", err)
	}
	return n, nil
}

// ReindexFTS recomputes fileID's projected FTS row from its current files
// row (title, publisher, summary, full_text) and associations (authors,
// tags). Callers invoke this after any write that touches a projected
// field, including indirect ones like an author merge or a tag link/unlink
// that changes the joined sets without touching the files row itself.
func (s *SQLiteStore) ReindexFTS(ctx context.Context, fileID int64) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		return s.reindexFTSFromRowTx(ctx, tx, fileID)
	})
}

// reindexFTSFromRowTx loads fileID's current projected fields and rewrites
// its files_fts row within an existing transaction.
func (s *SQLiteStore) reindexFTSFromRowTx(ctx context.Context, tx *sql.Tx, fileID int64) error {
	title, publisher, summary, fullText, authorNames, tagPaths, err := loadReindexFieldsTx(ctx, tx, fileID)
	if err != nil {
		return err
	}
	return s.reindexFTSTx(ctx, tx, fileID, title, authorNames, publisher, tagPaths, summary, fullText)
}

// loadReindexFieldsTx gathers the projected fields for fileID as currently
// stored, for rebuilding its files_fts row.
func loadReindexFieldsTx(ctx context.Context, tx *sql.Tx, fileID int64) (title, publisher, summary, fullText string, authorNames, tagPaths []string, err error) {
	err = tx.QueryRowContext(ctx, `SELECT title, publisher, summary, full_text FROM files WHERE id = ?`, fileID).
		Scan(&title, &publisher, &summary, &fullText)
	if err != nil {
		return "", "", "", "", nil, nil, fmt.Errorf("load file for reindex: %w", err)
	}

	authorRows, err := tx.QueryContext(ctx, `SELECT a.name FROM authors a
		JOIN file_authors fa ON fa.author_id = a.id WHERE fa.file_id = ? ORDER BY fa.position`, fileID)
	if err != nil {
		return "", "", "", "", nil, nil, fmt.Errorf("load authors for reindex: %w", err)
	}
	for authorRows.Next() {
		var name string
		if err := authorRows.Scan(&name); err != nil {
			authorRows.Close()
			return "", "", "", "", nil, nil, fmt.Errorf("scan author for reindex: %w", err)
		}
		authorNames = append(authorNames, name)
	}
	authorRows.Close()

	tagRows, err := tx.QueryContext(ctx, `SELECT t.path FROM tags t
		JOIN file_tags ft ON ft.tag_id = t.id WHERE ft.file_id = ?`, fileID)
	if err != nil {
		return "", "", "", "", nil, nil, fmt.Errorf("load tags for reindex: %w", err)
	}
	for tagRows.Next() {
		var path string
		if err := tagRows.Scan(&path); err != nil {
			tagRows.Close()
			return "", "", "", "", nil, nil, fmt.Errorf("scan tag for reindex: %w", err)
		}
		tagPaths = append(tagPaths, path)
	}
	tagRows.Close()

	return title, publisher, summary, fullText, authorNames, tagPaths, nil
}

// reindexFTSTx deletes and re-inserts fileID's row in files_fts, keeping
// the contentless virtual table's rowid aligned with files.id.
func (s *SQLiteStore) reindexFTSTx(ctx context.Context, tx *sql.Tx, fileID int64,
	title string, authorNames []string, publisher string, tagPaths []string, summary, fullText string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM files_fts WHERE rowid = ?`, fileID); err != nil {
		return fmt.Errorf("clear fts row: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO files_fts (rowid, title, authors, publisher, tags, summary, full_text) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fileID, title, strings.Join(authorNames, " "), publisher, strings.Join(tagPaths, " "), summary, fullText)
	if err != nil {
		return fmt.Errorf("insert fts row: %w", err)
	}
	return nil
}
