package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

// SearchEcosystems returns active ecosystems whose name contains the query.
// No ordering is applied; rows come back in insertion order.
func (s *Store) SearchEcosystems(ctx context.Context, query string, limit int) ([]core.Ecosystem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner_name, coral_health, active
		FROM ecosystems
		WHERE name LIKE ? AND active = 1
		LIMIT ?`,
		likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching ecosystems: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var ecosystems []core.Ecosystem
	for rows.Next() {
		var eco core.Ecosystem
		var active int
		if err := rows.Scan(&eco.ID, &eco.Name, &eco.OwnerName, &eco.CoralHealth, &active); err != nil {
			return nil, fmt.Errorf("scanning ecosystem: %w", err)
		}
		eco.Active = active == 1
		ecosystems = append(ecosystems, eco)
	}
	return ecosystems, rows.Err()
}

// InsertEcosystem stores a simulator ecosystem. The simulator itself lives
// elsewhere; this exists for seeding and tests.
func (s *Store) InsertEcosystem(ctx context.Context, eco *core.Ecosystem) error {
	if eco.ID == "" {
		eco.ID = uuid.New().String()
	}
	active := 0
	if eco.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ecosystems (id, name, owner_name, coral_health, active)
		VALUES (?, ?, ?, ?, ?)`,
		eco.ID, eco.Name, eco.OwnerName, eco.CoralHealth, active)
	if err != nil {
		return fmt.Errorf("inserting ecosystem: %w", err)
	}
	return nil
}
