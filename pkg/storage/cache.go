package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

// GetCachedResults returns the cached web results for a normalized query.
// Expired rows are treated as absent; they are superseded by the next
// upsert, never read.
func (s *Store) GetCachedResults(ctx context.Context, query string) ([]core.WebResult, bool, error) {
	var blob []byte
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT results, expires_at FROM search_cache WHERE query = ?", query).
		Scan(&blob, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading search cache: %w", err)
	}

	if !time.Now().Before(expiresAt) {
		return nil, false, nil
	}

	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cached results: %w", err)
	}

	var results []core.WebResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached results: %w", err)
	}
	return results, true, nil
}

// PutCachedResults upserts the cache row for a normalized query. Payloads
// are stored zstd-compressed.
func (s *Store) PutCachedResults(ctx context.Context, query string, results []core.WebResult, expiresAt time.Time) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	blob := s.enc.EncodeAll(raw, nil)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_cache (query, results, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			results = excluded.results,
			expires_at = excluded.expires_at`,
		query, blob, expiresAt)
	if err != nil {
		return fmt.Errorf("upserting search cache: %w", err)
	}
	return nil
}
