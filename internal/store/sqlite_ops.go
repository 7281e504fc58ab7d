// sqlite_ops.go owns SQLite connection management: pragma configuration,
// connection pooling, and the Tx helper. It is the only file that imports
// the driver, so swapping it stays a one-file change.
//
// WAL mode lets readers proceed while a writer holds the database (needed
// for the MCP server reading while the CLI or importer writes). NORMAL
// synchronous trades the last transaction on an OS crash for roughly 10x
// faster commits, acceptable since a crashed import can be re-run.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nerdneilsfield/tagbox/internal/tberr"
)

// SQLiteStore implements every segregated Store interface over a single
// SQLite connection pool.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

var (
	// ErrNotFound indicates the requested row does not exist or is deleted
	// where a live row was required.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists guards unique-path/unique-name inserts.
	ErrAlreadyExists = errors.New("already exists")
)

// Open opens path (a filesystem path or ":memory:") and applies the
// concurrency/durability pragmas. Callers must call Init before first use
// and Close before process exit.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
		`PRAGMA foreign_keys=ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Init creates every table, index, and the FTS5 projection if absent.
// SchemaVersion is the schema_version recorded in system_config by Init.
const SchemaVersion = "1.0.0"

// Init bootstraps the schema. It is idempotent on an already-initialized
// database and refuses to run against a database stamped with a newer
// schema_version than this binary knows about.
func (s *SQLiteStore) Init() error {
	if err := execSchema(s.db); err != nil {
		return err
	}

	ctx := context.Background()
	stored, ok, err := s.SystemConfigGet(ctx, "schema_version")
	if err != nil {
		return err
	}
	if ok && stored > SchemaVersion {
		return fmt.Errorf("%w: database schema_version %s is newer than this binary's %s", tberr.ErrConfigDrift, stored, SchemaVersion)
	}
	if !ok {
		if err := s.SystemConfigSet(ctx, "schema_version", SchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the pool for components (integrity checks, vacuum) that need
// direct access outside the segregated interfaces.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// SetMaxOpenConns bounds the pool size; SQLite's single-writer model makes
// a large pool pointless but read concurrency under WAL benefits from more
// than one.
func (s *SQLiteStore) SetMaxOpenConns(n int) {
	s.db.SetMaxOpenConns(n)
}

// Tx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Context cancellation aborts at the next database call.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// genID returns a unique 8-character lowercase base32 identifier, used for
// every key column (files, authors, tags, links).
func genID() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.EncodeToString(b)), nil
}
