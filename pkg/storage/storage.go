// Package storage implements the SQLite-backed store for articles, species,
// ecosystems and the web-search result cache.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/jairbenitez29/blueedu/pkg/db"
)

// Store wraps a single SQLite database holding every record kind.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (creating if necessary) the database at dbPath, applies the
// performance pragmas and runs pending migrations.
func Open(dbPath string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = memory",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(sqlDB); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Store{db: sqlDB, enc: enc, dec: dec}, nil
}

// DB exposes the underlying handle for migration status commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database and compression resources.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Stats returns record counts per table.
func (s *Store) Stats() (map[string]any, error) {
	stats := make(map[string]any)
	for _, table := range []string{"articles", "species", "ecosystems", "search_cache"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

// likePattern builds the substring pattern used by every record-kind
// search. SQLite LIKE is case-insensitive for ASCII, which matches the
// platform's previous behavior.
func likePattern(query string) string {
	return "%" + query + "%"
}
