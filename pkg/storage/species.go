package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

const speciesColumns = "id, common_name, scientific_name, description, habitat, conservation_status, category, depth_min, depth_max, temp_min, temp_max, image_url"

func scanSpecies(row interface{ Scan(...any) error }) (*core.Species, error) {
	var sp core.Species
	var status, category, imageURL sql.NullString
	err := row.Scan(&sp.ID, &sp.CommonName, &sp.ScientificName, &sp.Description, &sp.Habitat,
		&status, &category, &sp.DepthMin, &sp.DepthMax, &sp.TempMin, &sp.TempMax, &imageURL)
	if err != nil {
		return nil, err
	}
	sp.ConservationStatus = status.String
	sp.Category = category.String
	sp.ImageURL = imageURL.String
	return &sp, nil
}

// SearchSpecies returns species whose common name, scientific name,
// description or habitat contain the query, ordered by common name.
func (s *Store) SearchSpecies(ctx context.Context, query string, limit int) ([]core.Species, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+speciesColumns+`
		FROM species
		WHERE common_name LIKE ? OR scientific_name LIKE ? OR description LIKE ? OR habitat LIKE ?
		ORDER BY common_name ASC
		LIMIT ?`,
		pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching species: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var species []core.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning species: %w", err)
		}
		species = append(species, *sp)
	}
	return species, rows.Err()
}

// SearchSpeciesNames is the quick-search variant: matched on common or
// scientific name only.
func (s *Store) SearchSpeciesNames(ctx context.Context, query string, limit int) ([]core.Species, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+speciesColumns+`
		FROM species
		WHERE common_name LIKE ? OR scientific_name LIKE ?
		LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching species names: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var species []core.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning species: %w", err)
		}
		species = append(species, *sp)
	}
	return species, rows.Err()
}

// FindSpeciesByName looks up a species by exact common name or exact
// scientific name. Used by the ingestion sink for de-duplication.
func (s *Store) FindSpeciesByName(ctx context.Context, commonName, scientificName string) (*core.Species, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+speciesColumns+`
		FROM species
		WHERE common_name = ? OR scientific_name = ?
		LIMIT 1`,
		commonName, scientificName)

	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding species: %w", err)
	}
	return sp, nil
}

// InsertSpecies stores a new species, assigning an ID when missing.
func (s *Store) InsertSpecies(ctx context.Context, sp *core.Species) error {
	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO species (`+speciesColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.CommonName, sp.ScientificName, sp.Description, sp.Habitat,
		nullable(sp.ConservationStatus), nullable(sp.Category),
		sp.DepthMin, sp.DepthMax, sp.TempMin, sp.TempMax, nullable(sp.ImageURL))
	if err != nil {
		return fmt.Errorf("inserting species: %w", err)
	}
	return nil
}

// GetSpecies returns a single species by ID.
func (s *Store) GetSpecies(ctx context.Context, id string) (*core.Species, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+speciesColumns+" FROM species WHERE id = ?", id)
	sp, err := scanSpecies(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting species: %w", err)
	}
	return sp, nil
}

// ListSpecies returns species ordered by common name.
func (s *Store) ListSpecies(ctx context.Context, limit int) ([]core.Species, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+speciesColumns+`
		FROM species
		ORDER BY common_name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing species: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var species []core.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning species: %w", err)
		}
		species = append(species, *sp)
	}
	return species, rows.Err()
}

// nullable maps empty strings to NULL so optional columns stay NULL for
// scraped records.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
