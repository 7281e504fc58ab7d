// authors.go implements AuthorRegistry: an author identity forest where
// each alias edge points an alias author at its canonical author. Lookups
// always resolve through the alias edge, and MergeAuthors rejects edits
// that would create a cycle or alias a name onto itself.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

func scanAuthor(sc interface{ Scan(...any) error }) (Author, error) {
	var a Author
	var deletedAt sql.NullInt64
	err := sc.Scan(&a.ID, &a.Key, &a.Name, &a.CreatedAt, &deletedAt)
	if err != nil {
		return a, err
	}
	if deletedAt.Valid {
		v := deletedAt.Int64
		a.DeletedAt = &v
	}
	return a, nil
}

// canonicalID follows the alias edge for id, if one exists, returning id
// unchanged if it is already canonical.
func canonicalID(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id int64) (int64, error) {
	var canonical int64
	err := q.QueryRowContext(ctx, `SELECT canonical_id FROM author_aliases WHERE alias_id = ?`, id).Scan(&canonical)
	if err == sql.ErrNoRows {
		return id, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resolve canonical author: %w", err)
	}
	return canonical, nil
}

// ResolveAuthor looks up an author by exact name and follows its alias
// edge to the canonical identity. Returns ErrNotFound if no author with
// that name exists.
func (s *SQLiteStore) ResolveAuthor(ctx context.Context, name string) (*Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx,
		`SELECT id, key, name, created_at, deleted_at FROM authors WHERE name = ? COLLATE NOCASE`, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve author %s: %w", name, err)
	}

	canonical, err := canonicalID(ctx, s.db, a.ID)
	if err != nil {
		return nil, err
	}
	if canonical != a.ID {
		return s.authorByID(ctx, canonical)
	}
	return &a, nil
}

func (s *SQLiteStore) authorByID(ctx context.Context, id int64) (*Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx,
		`SELECT id, key, name, created_at, deleted_at FROM authors WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup author %d: %w", id, err)
	}
	return &a, nil
}

// resolveOrCreateAuthorTx finds an author by name within tx, creating it
// if absent. Used by Insert so importing a new name never requires a
// separate AddAuthor round trip.
func (s *SQLiteStore) resolveOrCreateAuthorTx(ctx context.Context, tx *sql.Tx, name string) (*Author, error) {
	a, err := scanAuthor(tx.QueryRowContext(ctx,
		`SELECT id, key, name, created_at, deleted_at FROM authors WHERE name = ?`, name))
	if err == nil {
		return &a, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup author %s: %w", name, err)
	}

	key, err := genID()
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, `INSERT INTO authors (key, name, created_at) VALUES (?, ?, ?)`, key, name, now)
	if err != nil {
		return nil, fmt.Errorf("insert author %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Author{ID: id, Key: key, Name: name, CreatedAt: now}, nil
}

// AddAuthor creates a new canonical author identity. Returns
// ErrAlreadyExists if the name is already taken.
func (s *SQLiteStore) AddAuthor(ctx context.Context, name string) (*Author, error) {
	var out *Author
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors WHERE name = ?`, name).Scan(&exists); err != nil {
			return fmt.Errorf("check author exists: %w", err)
		}
		if exists > 0 {
			return ErrAlreadyExists
		}
		a, err := s.resolveOrCreateAuthorTx(ctx, tx, name)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveAuthor soft-deletes a canonical author. Aliases pointing at it are
// left in place (they simply resolve to a deleted canonical author until
// explicitly re-pointed), matching the "soft-delete, never cascade-delete
// relationships implicitly" rule used throughout the store.
func (s *SQLiteStore) RemoveAuthor(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE authors SET deleted_at = ? WHERE key = ? AND deleted_at IS NULL`, time.Now().Unix(), key)
	if err != nil {
		return fmt.Errorf("remove author %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove author %s: %w", key, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MergeAuthors makes aliasKey an alias of canonicalKey. Rejects self-merge
// and rejects creating a cycle (merging a name that canonicalKey already
// (transitively) resolves through).
func (s *SQLiteStore) MergeAuthors(ctx context.Context, aliasKey, canonicalKey string) error {
	if aliasKey == canonicalKey {
		return fmt.Errorf("%w: cannot alias an author to itself", tberr.ErrAliasCycle)
	}

	return s.Tx(ctx, func(tx *sql.Tx) error {
		var aliasID, canonicalID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM authors WHERE key = ?`, aliasKey).Scan(&aliasID); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("lookup alias author %s: %w", aliasKey, err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT id FROM authors WHERE key = ?`, canonicalKey).Scan(&canonicalID); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("lookup canonical author %s: %w", canonicalKey, err)
		}
		if aliasID == canonicalID {
			return fmt.Errorf("%w: cannot alias an author to itself", tberr.ErrAliasCycle)
		}

		// Walk canonicalID's own alias chain: if it ever reaches aliasID,
		// merging would close a cycle.
		cursor := canonicalID
		for {
			var next int64
			err := tx.QueryRowContext(ctx, `SELECT canonical_id FROM author_aliases WHERE alias_id = ?`, cursor).Scan(&next)
			if err == sql.ErrNoRows {
				break
			}
			if err != nil {
				return fmt.Errorf("walk alias chain: %w", err)
			}
			if next == aliasID {
				return fmt.Errorf("%w: merging %s into %s would create a cycle", tberr.ErrAliasCycle, aliasKey, canonicalKey)
			}
			cursor = next
		}
		// Attach to the root of canonicalID's chain so no alias ends up
		// pointing at another alias.
		canonicalID = cursor

		// Re-point any author that currently aliases aliasID directly at
		// canonicalID, keeping the forest flat (depth 1) after the merge.
		if _, err := tx.ExecContext(ctx,
			`UPDATE author_aliases SET canonical_id = ? WHERE canonical_id = ?`, canonicalID, aliasID); err != nil {
			return fmt.Errorf("repoint existing aliases: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO author_aliases (alias_id, canonical_id, created_at) VALUES (?, ?, ?)
			 ON CONFLICT(alias_id) DO UPDATE SET canonical_id = excluded.canonical_id`,
			aliasID, canonicalID, time.Now().Unix()); err != nil {
			return fmt.Errorf("insert alias edge: %w", err)
		}

		// Every file currently crediting the alias has its FTS authors
		// projection go stale once we repoint file_authors below, so
		// gather the affected file IDs first and reindex them afterward.
		affectedRows, err := tx.QueryContext(ctx, `SELECT file_id FROM file_authors WHERE author_id = ?`, aliasID)
		if err != nil {
			return fmt.Errorf("list files for alias repoint: %w", err)
		}
		var affected []int64
		for affectedRows.Next() {
			var fid int64
			if err := affectedRows.Scan(&fid); err != nil {
				affectedRows.Close()
				return fmt.Errorf("scan file for alias repoint: %w", err)
			}
			affected = append(affected, fid)
		}
		affectedRows.Close()
		if err := affectedRows.Err(); err != nil {
			return err
		}

		// Re-home file_authors rows from the alias onto the canonical
		// author in one batch statement rather than row by row.
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE file_authors SET author_id = ? WHERE author_id = ?`, canonicalID, aliasID); err != nil {
			return fmt.Errorf("repoint file_authors: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM file_authors WHERE author_id = ?`, aliasID); err != nil {
			return fmt.Errorf("cleanup stale file_authors rows: %w", err)
		}

		for _, fid := range affected {
			if err := s.reindexFTSFromRowTx(ctx, tx, fid); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListAuthorAliases returns every alias pointing at canonicalKey.
func (s *SQLiteStore) ListAuthorAliases(ctx context.Context, canonicalKey string) ([]Author, error) {
	var canonicalID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM authors WHERE key = ?`, canonicalKey).Scan(&canonicalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup author %s: %w", canonicalKey, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.key, a.name, a.created_at, a.deleted_at
		FROM authors a JOIN author_aliases al ON al.alias_id = a.id
		WHERE al.canonical_id = ?`, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var out []Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		a.CanonicalOf = canonicalID
		out = append(out, a)
	}
	return out, rows.Err()
}

// AuthorsForFile returns a file's authors in stored position order.
func (s *SQLiteStore) AuthorsForFile(ctx context.Context, fileID int64) ([]Author, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.key, a.name, a.created_at, a.deleted_at
		FROM authors a JOIN file_authors fa ON fa.author_id = a.id
		WHERE fa.file_id = ? ORDER BY fa.position ASC`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list file authors: %w", err)
	}
	defer rows.Close()

	authors := []Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// SetFileAuthors replaces a file's author list in one transaction.
func (s *SQLiteStore) SetFileAuthors(ctx context.Context, fileID int64, authorIDs []int64) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM file_authors WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("clear file authors: %w", err)
		}
		for i, id := range authorIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO file_authors (file_id, author_id, position) VALUES (?, ?, ?)`, fileID, id, i); err != nil {
				return fmt.Errorf("set file author %d: %w", id, err)
			}
		}
		return nil
	})
}
