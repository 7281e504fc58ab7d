// tags.go implements Tagger over the hierarchical tag forest. A tag's path
// ("science/physics/quantum") is its canonical key; EnsureTagPath creates
// every missing ancestor segment so a file can always be tagged with a
// leaf without the caller pre-creating its parents.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"
)

func scanTag(sc interface{ Scan(...any) error }) (Tag, error) {
	var t Tag
	var parentID sql.NullInt64
	err := sc.Scan(&t.ID, &t.Key, &t.Path, &t.Name, &parentID)
	if err != nil {
		return t, err
	}
	if parentID.Valid {
		t.ParentID = parentID.Int64
	}
	return t, nil
}

// EnsureTagPath creates path and every missing ancestor segment, returning
// the leaf tag.
func (s *SQLiteStore) EnsureTagPath(ctx context.Context, tagPath string) (*Tag, error) {
	var out *Tag
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		t, err := s.ensureTagPathTx(ctx, tx, tagPath)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) ensureTagPathTx(ctx context.Context, tx *sql.Tx, tagPath string) (*Tag, error) {
	tagPath = strings.Trim(tagPath, "/")
	segments := strings.Split(tagPath, "/")

	var parentID int64
	var hasParent bool
	var current Tag
	built := ""

	for _, seg := range segments {
		if built == "" {
			built = seg
		} else {
			built = path.Join(built, seg)
		}

		t, err := scanTag(tx.QueryRowContext(ctx, `SELECT id, key, path, name, parent_id FROM tags WHERE path = ?`, built))
		if err == nil {
			current = t
			parentID = t.ID
			hasParent = true
			continue
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("lookup tag %s: %w", built, err)
		}

		key, err := genID()
		if err != nil {
			return nil, err
		}
		var res sql.Result
		if hasParent {
			res, err = tx.ExecContext(ctx, `INSERT INTO tags (key, path, name, parent_id, created_at) VALUES (?, ?, ?, ?, ?)`,
				key, built, seg, parentID, time.Now().Unix())
		} else {
			res, err = tx.ExecContext(ctx, `INSERT INTO tags (key, path, name, parent_id, created_at) VALUES (?, ?, ?, NULL, ?)`,
				key, built, seg, time.Now().Unix())
		}
		if err != nil {
			return nil, fmt.Errorf("insert tag %s: %w", built, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		current = Tag{ID: id, Key: key, Path: built, Name: seg, ParentID: parentID}
		parentID = id
		hasParent = true
	}

	return &current, nil
}

// TagFile associates fileID with the tag at tagPath, creating any missing
// ancestor tags first, and reprojects fileID's FTS row since the joined tag
// set just changed.
func (s *SQLiteStore) TagFile(ctx context.Context, fileID int64, tagPath string) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		tag, err := s.ensureTagPathTx(ctx, tx, tagPath)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO file_tags (file_id, tag_id, created_at) VALUES (?, ?, ?)`,
			fileID, tag.ID, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("tag file: %w", err)
		}
		return s.reindexFTSFromRowTx(ctx, tx, fileID)
	})
}

// UntagFile removes the association between fileID and tagPath, if present,
// and reprojects fileID's FTS row since the joined tag set just changed.
func (s *SQLiteStore) UntagFile(ctx context.Context, fileID int64, tagPath string) error {
	tagPath = strings.Trim(tagPath, "/")
	return s.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM file_tags WHERE file_id = ? AND tag_id = (SELECT id FROM tags WHERE path = ?)`, fileID, tagPath)
		if err != nil {
			return fmt.Errorf("untag file: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("untag file: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return s.reindexFTSFromRowTx(ctx, tx, fileID)
	})
}

// TagsForFile returns every tag (at any depth) attached to fileID.
func (s *SQLiteStore) TagsForFile(ctx context.Context, fileID int64) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.key, t.path, t.name, t.parent_id
		FROM tags t JOIN file_tags ft ON ft.tag_id = t.id
		WHERE ft.file_id = ? ORDER BY t.path ASC`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list file tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag soft-deletes a tag node. Child tags and file_tags rows are left
// untouched: tag: search filters skip the deleted tag, but TagsForFile
// still returns it for files that carry it. Vacuum purges a deleted tag
// only once no file_tags row references it.
func (s *SQLiteStore) DeleteTag(ctx context.Context, tagPath string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tags SET deleted_at = ? WHERE path = ? AND deleted_at IS NULL`, time.Now().Unix(), strings.Trim(tagPath, "/"))
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", tagPath, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", tagPath, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
