// vacuum.go permanently removes soft-deleted rows. Soft-delete gives
// recovery; vacuum removes that safety net, so it is never called as part
// of a normal write path - only on explicit operator request.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Vacuum permanently deletes soft-deleted files (and their FTS projection
// rows, association rows, and incident links) older than olderThan, or all
// soft-deleted files if olderThan is nil. Returns the number of files
// purged.
func (s *SQLiteStore) Vacuum(ctx context.Context, olderThan *time.Duration) (int64, error) {
	var purged int64

	err := s.Tx(ctx, func(tx *sql.Tx) error {
		query := `SELECT id FROM files WHERE deleted_at IS NOT NULL`
		var args []any
		if olderThan != nil {
			query += ` AND deleted_at < ?`
			args = append(args, time.Now().Add(-*olderThan).Unix())
		}

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("select vacuum candidates: %w", err)
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("scan vacuum candidate: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range ids {
			stmts := []struct {
				query string
				args  []any
			}{
				{`DELETE FROM file_authors WHERE file_id = ?`, []any{id}},
				{`DELETE FROM file_tags WHERE file_id = ?`, []any{id}},
				{`DELETE FROM file_links WHERE from_id = ? OR to_id = ?`, []any{id, id}},
				{`DELETE FROM file_access_stats WHERE file_id = ?`, []any{id}},
				{`DELETE FROM file_history WHERE file_id = ?`, []any{id}},
				{`DELETE FROM files_fts WHERE rowid = ?`, []any{id}},
				{`DELETE FROM files WHERE id = ?`, []any{id}},
			}
			for _, st := range stmts {
				if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
					return fmt.Errorf("vacuum file %d: %w", id, err)
				}
			}
			purged++
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE deleted_at IS NOT NULL AND id NOT IN (SELECT DISTINCT tag_id FROM file_tags)`); err != nil {
			return fmt.Errorf("vacuum orphan tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE deleted_at IS NOT NULL AND id NOT IN (SELECT DISTINCT author_id FROM file_authors) AND id NOT IN (SELECT canonical_id FROM author_aliases)`); err != nil {
			return fmt.Errorf("vacuum orphan authors: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
