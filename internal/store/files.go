// files.go implements Reader and Writer for the files table: creation,
// sparse field edits, soft-delete/restore, relocation, and the append-only
// history log. Insert, SoftDelete, Restore, Move and UpdateHash each append
// their file_history row inside the same transaction as the change, so
// that part of the audit trail never drifts from the operations that
// produced it. Update and RecordAccess write no history row themselves;
// callers use AppendHistory for that.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func scanFile(sc interface{ Scan(...any) error }) (File, error) {
	var f File
	var year, deletedAt sql.NullInt64
	err := sc.Scan(&f.ID, &f.Key, &f.Path, &f.Title, &year, &f.Publisher, &f.SourceURL,
		&f.Category1, &f.Category2, &f.Category3, &f.Summary, &f.FullText,
		&f.InitialHash, &f.CurrentHash, &f.HashAlgo, &f.SizeBytes,
		&f.FileMetadata, &f.TypeMetadata,
		&f.CreatedAt, &f.UpdatedAt, &deletedAt)
	if err != nil {
		return f, err
	}
	if year.Valid {
		f.Year = int(year.Int64)
	}
	if deletedAt.Valid {
		v := deletedAt.Int64
		f.DeletedAt = &v
	}
	return f, nil
}

const fileColumns = `id, key, path, title, year, publisher, source_url, category1, category2, category3, summary, full_text,
	initial_hash, current_hash, hash_algo, size_bytes, file_metadata, type_metadata, created_at, updated_at, deleted_at`

func (s *SQLiteStore) loadAssociations(ctx context.Context, f *File) error {
	authors, err := s.AuthorsForFile(ctx, f.ID)
	if err != nil {
		return err
	}
	f.Authors = authors

	tags, err := s.TagsForFile(ctx, f.ID)
	if err != nil {
		return err
	}
	f.Tags = tags
	return nil
}

// ByKey retrieves a file by its public key.
func (s *SQLiteStore) ByKey(ctx context.Context, key string, includeDeleted bool) (*File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE key = ?`
	if !includeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	f, err := scanFile(s.db.QueryRowContext(ctx, q, key))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file %s: %w", key, err)
	}
	if err := s.loadAssociations(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ByPath retrieves a file by its stored library-relative path.
func (s *SQLiteStore) ByPath(ctx context.Context, path string, includeDeleted bool) (*File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE path = ?`
	if !includeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	f, err := scanFile(s.db.QueryRowContext(ctx, q, path))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file %s: %w", path, err)
	}
	if err := s.loadAssociations(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ByInitialHash looks up a live file by its original content digest,
// computed under the given algorithm. Used by the importer's duplicate
// check before any write happens.
func (s *SQLiteStore) ByInitialHash(ctx context.Context, algo, digest string) (*File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE hash_algo = ? AND initial_hash = ? AND deleted_at IS NULL`
	f, err := scanFile(s.db.QueryRowContext(ctx, q, algo, digest))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file by hash: %w", err)
	}
	return &f, nil
}

// List returns files whose path starts with pathPrefix, newest first.
func (s *SQLiteStore) List(ctx context.Context, pathPrefix string, includeDeleted bool, limit, offset int) ([]File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE path LIKE ?`
	args := []any{pathPrefix + "%"}
	if !includeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	q += ` ORDER BY created_at DESC`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Insert creates a new file row, its author/tag associations, and its FTS
// projection, all inside one transaction. The returned File has its
// generated Key and ID populated.
func (s *SQLiteStore) Insert(ctx context.Context, opts NewFileOptions) (*File, error) {
	var out File
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		key, err := genID()
		if err != nil {
			return err
		}
		now := time.Now().Unix()

		res, err := tx.ExecContext(ctx, `INSERT INTO files
			(key, path, title, year, publisher, source_url, category1, category2, category3, summary, full_text,
			 initial_hash, current_hash, hash_algo, size_bytes, file_metadata, type_metadata, created_at, updated_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
			key, opts.Path, opts.Title, nullableYear(opts.Year), opts.Publisher, opts.SourceURL,
			opts.Category1, opts.Category2, opts.Category3, opts.Summary, opts.FullText,
			opts.InitialHash, opts.InitialHash, opts.HashAlgo, opts.SizeBytes,
			opts.FileMetadata, opts.TypeMetadata, now, now)
		if err != nil {
			return fmt.Errorf("insert file: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		authorIDs := make([]int64, 0, len(opts.AuthorNames))
		for i, name := range opts.AuthorNames {
			author, err := s.resolveOrCreateAuthorTx(ctx, tx, name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO file_authors (file_id, author_id, position) VALUES (?, ?, ?)`,
				id, author.ID, i); err != nil {
				return fmt.Errorf("link author %s: %w", name, err)
			}
			authorIDs = append(authorIDs, author.ID)
		}

		for _, path := range opts.TagPaths {
			tag, err := s.ensureTagPathTx(ctx, tx, path)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO file_tags (file_id, tag_id, created_at) VALUES (?, ?, ?)`,
				id, tag.ID, now); err != nil {
				return fmt.Errorf("tag file %s: %w", path, err)
			}
		}

		if err := s.reindexFTSTx(ctx, tx, id, opts.Title, opts.AuthorNames,
			opts.Publisher, opts.TagPaths, opts.Summary, opts.FullText); err != nil {
			return err
		}

		if err := s.appendHistoryTx(ctx, tx, id, "import", "imported at "+opts.Path); err != nil {
			return err
		}

		out = File{
			ID: id, Key: key, Path: opts.Path, Title: opts.Title, Year: opts.Year,
			Publisher: opts.Publisher, SourceURL: opts.SourceURL, Category1: opts.Category1, Category2: opts.Category2,
			Category3: opts.Category3, Summary: opts.Summary, FullText: opts.FullText,
			InitialHash: opts.InitialHash, CurrentHash: opts.InitialHash,
			HashAlgo: opts.HashAlgo, SizeBytes: opts.SizeBytes,
			FileMetadata: opts.FileMetadata, TypeMetadata: opts.TypeMetadata,
			CreatedAt: now, UpdatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func nullableYear(y int) any {
	if y == 0 {
		return nil
	}
	return y
}

// Update applies a sparse set of field edits. Nil pointers in fields leave
// the corresponding column unchanged. Callers that touch a projected field
// (title, publisher, summary, full_text) are responsible for
// calling ReindexFTS afterward - Update itself only updates the files row.
func (s *SQLiteStore) Update(ctx context.Context, key string, fields UpdateFieldSet) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Year != nil {
		add("year", nullableYear(*fields.Year))
	}
	if fields.Publisher != nil {
		add("publisher", *fields.Publisher)
	}
	if fields.SourceURL != nil {
		add("source_url", *fields.SourceURL)
	}
	if fields.Category1 != nil {
		add("category1", *fields.Category1)
	}
	if fields.Category2 != nil {
		add("category2", *fields.Category2)
	}
	if fields.Category3 != nil {
		add("category3", *fields.Category3)
	}
	if fields.Summary != nil {
		add("summary", *fields.Summary)
	}
	if fields.FullText != nil {
		add("full_text", *fields.FullText)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", time.Now().Unix())

	q := "UPDATE files SET "
	for i, s := range sets {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += " WHERE key = ? AND deleted_at IS NULL"
	args = append(args, key)

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update file %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update file %s: %w", key, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks a file deleted without removing data, cascading to its
// outgoing/incoming links so a restore brings the whole neighbourhood back.
// reason is recorded verbatim on the delete history row.
func (s *SQLiteStore) SoftDelete(ctx context.Context, key, reason string) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ? AND deleted_at IS NULL`, key).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup file %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE files SET deleted_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("soft delete file %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE file_links SET deleted_at = ? WHERE (from_id = ? OR to_id = ?) AND deleted_at IS NULL`,
			now, id, id); err != nil {
			return fmt.Errorf("cascade delete links for %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM files_fts WHERE rowid = ?`, id); err != nil {
			return fmt.Errorf("remove fts row for %s: %w", key, err)
		}
		return s.appendHistoryTx(ctx, tx, id, "soft_delete", reason)
	})
}

// Restore reverses SoftDelete, bringing the file and its links back.
func (s *SQLiteStore) Restore(ctx context.Context, key string) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ? AND deleted_at IS NOT NULL`, key).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup file %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE files SET deleted_at = NULL WHERE id = ?`, id); err != nil {
			return fmt.Errorf("restore file %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE file_links SET deleted_at = NULL WHERE (from_id = ? OR to_id = ?) AND deleted_at IS NOT NULL`,
			id, id); err != nil {
			return fmt.Errorf("cascade restore links for %s: %w", key, err)
		}
		if err := s.reindexFTSFromRowTx(ctx, tx, id); err != nil {
			return err
		}
		return s.appendHistoryTx(ctx, tx, id, "restore", "")
	})
}

// Move relocates a file's library-relative path without touching its
// content or hash. Collision detection happens in the caller (editor
// package), which is responsible for passing an already-unique newPath.
func (s *SQLiteStore) Move(ctx context.Context, key, newPath string) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		var id int64
		var oldPath string
		err := tx.QueryRowContext(ctx, `SELECT id, path FROM files WHERE key = ? AND deleted_at IS NULL`, key).Scan(&id, &oldPath)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup file %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE files SET path = ?, updated_at = ? WHERE id = ?`,
			newPath, time.Now().Unix(), id); err != nil {
			return fmt.Errorf("move file %s: %w", key, err)
		}
		return s.appendHistoryTx(ctx, tx, id, "move", oldPath+" -> "+newPath)
	})
}

// UpdateHash records a freshly recomputed content digest as current_hash,
// e.g. after re-verification detects that stored content changed on disk.
// initial_hash, the immutable fingerprint taken at first import, is never
// touched here.
func (s *SQLiteStore) UpdateHash(ctx context.Context, key, algo, digest string, sizeBytes int64) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ? AND deleted_at IS NULL`, key).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup file %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE files SET current_hash = ?, hash_algo = ?, size_bytes = ?, updated_at = ? WHERE id = ?`,
			digest, algo, sizeBytes, time.Now().Unix(), id); err != nil {
			return fmt.Errorf("update hash for %s: %w", key, err)
		}
		return s.appendHistoryTx(ctx, tx, id, "rehash", algo+":"+digest)
	})
}

// RecordAccess increments a file's access counter and timestamp.
func (s *SQLiteStore) RecordAccess(ctx context.Context, key string) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ? AND deleted_at IS NULL`, key).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup file %s: %w", key, err)
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO file_access_stats (file_id, access_count, last_access)
		VALUES (?, 1, ?)
		ON CONFLICT(file_id) DO UPDATE SET access_count = access_count + 1, last_access = excluded.last_access`,
		id, now)
	if err != nil {
		return fmt.Errorf("record access for %s: %w", key, err)
	}
	return nil
}

// AppendHistory records a single audit-log entry outside of an existing
// transaction. Prefer appendHistoryTx within a Tx to keep the entry
// atomic with the state change it documents.
func (s *SQLiteStore) AppendHistory(ctx context.Context, fileID int64, action, detail string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO file_history (file_id, action, detail, created_at) VALUES (?, ?, ?, ?)`,
		fileID, action, detail, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) appendHistoryTx(ctx context.Context, tx *sql.Tx, fileID int64, action, detail string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO file_history (file_id, action, detail, created_at) VALUES (?, ?, ?, ?)`,
		fileID, action, detail, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns every audit entry for fileID, oldest first.
func (s *SQLiteStore) History(ctx context.Context, fileID int64) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, detail, created_at FROM file_history WHERE file_id = ? ORDER BY created_at ASC`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AccessStats returns the access counter/timestamp for fileID, or a
// zero-valued result if the file has never been accessed.
func (s *SQLiteStore) AccessStats(ctx context.Context, fileID int64) (*AccessStats, error) {
	var stats AccessStats
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT access_count, last_access FROM file_access_stats WHERE file_id = ?`, fileID).
		Scan(&stats.AccessCount, &last)
	if err == sql.ErrNoRows {
		return &AccessStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query access stats: %w", err)
	}
	if last.Valid {
		stats.LastAccess = last.Int64
	}
	return &stats, nil
}

// Stats reports aggregate catalogue counts for capacity/operational views.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM files WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM files WHERE deleted_at IS NOT NULL),
		(SELECT COUNT(*) FROM authors WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM tags WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM file_links WHERE deleted_at IS NULL),
		(SELECT COALESCE(MIN(created_at), 0) FROM files WHERE deleted_at IS NULL),
		(SELECT COALESCE(MAX(created_at), 0) FROM files WHERE deleted_at IS NULL)`)
	if err := row.Scan(&st.Files, &st.DeletedFiles, &st.Authors, &st.Tags, &st.Links, &st.OldestFile, &st.NewestFile); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &st, nil
}
