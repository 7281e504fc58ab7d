// system_config.go implements the small key/value table that records
// bootstrap-time facts (schema version, the hash algorithm and templates
// in force when the library was last initialized) so the integrity
// component can detect configuration drift against what is actually on
// disk.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SystemConfigGet reads a single system_config value. Returns ("", false, nil)
// if the key is unset.
func (s *SQLiteStore) SystemConfigGet(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM system_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read system_config %s: %w", key, err)
	}
	return value, true, nil
}

// SystemConfigSet upserts a system_config value.
func (s *SQLiteStore) SystemConfigSet(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_config (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write system_config %s: %w", key, err)
	}
	return nil
}
