// Package cache persists clean verdicts between runs so unchanged files can
// skip checker invocations entirely, the same way eslint-style caches work.
//
// Only fully clean results are ever cached: a file whose content hash has a
// verdict row produced no corrected content, no violations and no failure
// for that checker. Anything else is recomputed every run, so the cache can
// never mask a violation.
package cache

import (
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store manages the SQLite database holding clean verdicts.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the verdict database at dbPath. The
// special path ":memory:" opens an in-memory database, used by tests.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One connection: sqlite serializes writers anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsClean reports whether content with contentHash previously passed
// checkerKey untouched.
func (s *Store) IsClean(checkerKey, contentHash string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM clean_verdicts WHERE checker = ? AND content_hash = ?`,
		checkerKey, contentHash,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query verdict: %w", err)
	}
	return true, nil
}

// MarkClean records a clean verdict for contentHash under checkerKey.
func (s *Store) MarkClean(checkerKey, contentHash string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO clean_verdicts (checker, content_hash) VALUES (?, ?)`,
		checkerKey, contentHash,
	)
	if err != nil {
		return fmt.Errorf("record verdict: %w", err)
	}
	return nil
}

// HashContent returns the hex SHA-256 of content, the hash verdicts are
// keyed by.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
