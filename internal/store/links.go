// links.go implements Linker: directed relationships between two files.
// Linking an already soft-deleted link restores it instead of inserting a
// duplicate row, since (from_id, to_id, relation) is unique.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (s *SQLiteStore) fileIDByKey(ctx context.Context, tx *sql.Tx, key string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ? AND deleted_at IS NULL`, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup file %s: %w", key, err)
	}
	return id, nil
}

// Link creates (or restores) a directed relation from fromKey to toKey.
func (s *SQLiteStore) Link(ctx context.Context, fromKey, toKey, relation string) (*Link, error) {
	var out Link
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		fromID, err := s.fileIDByKey(ctx, tx, fromKey)
		if err != nil {
			return err
		}
		toID, err := s.fileIDByKey(ctx, tx, toKey)
		if err != nil {
			return err
		}

		var existingKey string
		var deletedAt sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`SELECT key, deleted_at FROM file_links WHERE from_id = ? AND to_id = ? AND relation = ?`,
			fromID, toID, relation).Scan(&existingKey, &deletedAt)
		now := time.Now().Unix()
		if err == nil {
			if deletedAt.Valid {
				if _, err := tx.ExecContext(ctx, `UPDATE file_links SET deleted_at = NULL WHERE key = ?`, existingKey); err != nil {
					return fmt.Errorf("restore link: %w", err)
				}
			}
			out = Link{ID: existingKey, FromKey: fromKey, ToKey: toKey, Relation: relation, CreatedAt: now}
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup existing link: %w", err)
		}

		key, err := genID()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO file_links (key, from_id, to_id, relation, created_at) VALUES (?, ?, ?, ?, ?)`,
			key, fromID, toID, relation, now); err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
		out = Link{ID: key, FromKey: fromKey, ToKey: toKey, Relation: relation, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Unlink soft-deletes a single link between fromKey and toKey.
func (s *SQLiteStore) Unlink(ctx context.Context, fromKey, toKey, relation string) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		fromID, err := s.fileIDByKey(ctx, tx, fromKey)
		if err != nil {
			return err
		}
		toID, err := s.fileIDByKey(ctx, tx, toKey)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE file_links SET deleted_at = ? WHERE from_id = ? AND to_id = ? AND relation = ? AND deleted_at IS NULL`,
			time.Now().Unix(), fromID, toID, relation)
		if err != nil {
			return fmt.Errorf("unlink: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("unlink: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BatchUnlink soft-deletes every outgoing link from fromKey in a single
// transaction, returning the number of links removed.
func (s *SQLiteStore) BatchUnlink(ctx context.Context, fromKey string) (int64, error) {
	var affected int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		fromID, err := s.fileIDByKey(ctx, tx, fromKey)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE file_links SET deleted_at = ? WHERE from_id = ? AND deleted_at IS NULL`, time.Now().Unix(), fromID)
		if err != nil {
			return fmt.Errorf("batch unlink: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func scanLinks(ctx context.Context, db *sql.DB, query string, id int64) ([]Link, error) {
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []Link{}
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.FromKey, &l.ToKey, &l.Relation, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Outgoing returns every live link originating at fromKey.
func (s *SQLiteStore) Outgoing(ctx context.Context, fromKey string) ([]Link, error) {
	var fromID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ?`, fromKey).Scan(&fromID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup file %s: %w", fromKey, err)
	}
	return scanLinks(ctx, s.db, `SELECT fl.key, ff.key, ft.key, fl.relation, fl.created_at
		FROM file_links fl
		JOIN files ff ON ff.id = fl.from_id
		JOIN files ft ON ft.id = fl.to_id
		WHERE fl.from_id = ? AND fl.deleted_at IS NULL`, fromID)
}

// Incoming returns every live link that targets toKey.
func (s *SQLiteStore) Incoming(ctx context.Context, toKey string) ([]Link, error) {
	var toID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM files WHERE key = ?`, toKey).Scan(&toID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup file %s: %w", toKey, err)
	}
	return scanLinks(ctx, s.db, `SELECT fl.key, ff.key, ft.key, fl.relation, fl.created_at
		FROM file_links fl
		JOIN files ff ON ff.id = fl.from_id
		JOIN files ft ON ft.id = fl.to_id
		WHERE fl.to_id = ? AND fl.deleted_at IS NULL`, toID)
}
