package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Observation is one stored API response for a location and day
type Observation struct {
	Date       string
	LocationID string
	Payload    []byte
}

// PutObservation stores payload under (date, locationID). An existing row is
// left untouched and reported as inserted == false.
func (s *Store) PutObservation(ctx context.Context, date, locationID string, payload []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO aqi_data (date, zip_code, data) VALUES (?, ?, ?)`,
		date, locationID, string(payload),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert observation %s/%s: %w", locationID, date, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result for %s/%s: %w", locationID, date, err)
	}
	return n == 1, nil
}

// Observation fetches one stored observation. ok is false when none exists.
func (s *Store) Observation(ctx context.Context, date, locationID string) (Observation, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM aqi_data WHERE date = ? AND zip_code = ?`,
		date, locationID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Observation{}, false, nil
	}
	if err != nil {
		return Observation{}, false, fmt.Errorf("failed to query observation %s/%s: %w", locationID, date, err)
	}

	return Observation{Date: date, LocationID: locationID, Payload: []byte(data)}, true, nil
}

// CountObservations returns the number of stored observations
func (s *Store) CountObservations(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM aqi_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}

// CountObservationsByLocation returns stored observation counts keyed by location id
func (s *Store) CountObservationsByLocation(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT zip_code, COUNT(*) FROM aqi_data GROUP BY zip_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to count observations by location: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var loc string
		var n int
		if err := rows.Scan(&loc, &n); err != nil {
			return nil, fmt.Errorf("failed to scan observation count: %w", err)
		}
		counts[loc] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observation counts: %w", err)
	}
	return counts, nil
}
