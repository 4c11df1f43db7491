package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DanceIDByTitle looks up a dance by its title, the natural key used for
// duplicate detection. Returns ErrNotFound when no such dance exists.
func (s *Store) DanceIDByTitle(ctx context.Context, title string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM dances WHERE title = ?`, title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("dance %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup dance by title: %w", err)
	}
	return id, nil
}

// CountRows returns the row count of one of the entity tables. Only the
// fixed table names of the schema are accepted.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	switch table {
	case "categories", "countries", "dances":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Seed inserts a baseline set of reference rows. Safe to run repeatedly;
// all inserts are insert-if-absent.
func (s *Store) Seed(ctx context.Context) error {
	categories := []string{"Ballroom", "Latin", "Hip-Hop", "Folk", "Contemporary"}
	countries := [][2]string{
		{"USA", "US"},
		{"Argentina", "AR"},
		{"Brazil", "BR"},
		{"Austria", "AT"},
		{"Ireland", "IE"},
	}

	for _, name := range categories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	for _, c := range countries {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO countries (name, code) VALUES (?, ?)`, c[0], c[1]); err != nil {
			return fmt.Errorf("seed country %q: %w", c[0], err)
		}
	}

	s.logger.Info("seed complete",
		"categories", len(categories),
		"countries", len(countries),
	)
	return nil
}
