package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aqiscraper/pkg/checkpoint"
)

var _ checkpoint.Backend = (*Store)(nil)

// LoadOrCreateCursor returns the stored cursor, inserting initial when the
// progress table is empty. Read and insert share one transaction.
func (s *Store) LoadOrCreateCursor(ctx context.Context, initial checkpoint.Cursor) (checkpoint.Cursor, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return checkpoint.Cursor{}, fmt.Errorf("failed to begin cursor transaction: %w", err)
	}
	defer tx.Rollback()

	var c checkpoint.Cursor
	err = tx.QueryRowContext(ctx,
		`SELECT year, month, day, zip_code_index FROM script_progress LIMIT 1`,
	).Scan(&c.Year, &c.Month, &c.Day, &c.LocationIndex)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO script_progress (year, month, day, zip_code_index) VALUES (?, ?, ?, ?)`,
			initial.Year, initial.Month, initial.Day, initial.LocationIndex,
		); err != nil {
			return checkpoint.Cursor{}, fmt.Errorf("failed to create cursor: %w", err)
		}
		c = initial
	case err != nil:
		return checkpoint.Cursor{}, fmt.Errorf("failed to read cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return checkpoint.Cursor{}, fmt.Errorf("failed to commit cursor transaction: %w", err)
	}
	return c, nil
}

// SaveCursor overwrites the single progress row
func (s *Store) SaveCursor(ctx context.Context, c checkpoint.Cursor) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE script_progress SET year = ?, month = ?, day = ?, zip_code_index = ?`,
		c.Year, c.Month, c.Day, c.LocationIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to update cursor: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read cursor update result: %w", err)
	}
	if n == 0 {
		return errors.New("no cursor row to update; load the cursor first")
	}
	return nil
}

// Cursor reads the stored cursor without creating one. ok is false before
// the first harvest.
func (s *Store) Cursor(ctx context.Context) (checkpoint.Cursor, bool, error) {
	var c checkpoint.Cursor
	err := s.db.QueryRowContext(ctx,
		`SELECT year, month, day, zip_code_index FROM script_progress LIMIT 1`,
	).Scan(&c.Year, &c.Month, &c.Day, &c.LocationIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return checkpoint.Cursor{}, false, nil
	}
	if err != nil {
		return checkpoint.Cursor{}, false, fmt.Errorf("failed to read cursor: %w", err)
	}
	return c, true, nil
}
