package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"aqiscraper/pkg/logger"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS aqi_data (
	date TEXT NOT NULL,
	zip_code TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (date, zip_code)
);

CREATE TABLE IF NOT EXISTS script_progress (
	year INTEGER NOT NULL,
	month INTEGER NOT NULL,
	day INTEGER NOT NULL,
	zip_code_index INTEGER NOT NULL
);
`

// Store is the harvester's single SQLite database holding observations and
// the progress cursor
type Store struct {
	db     *sql.DB
	path   string
	logger logger.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// One process, one writer; a single connection also keeps :memory: shared
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   path,
		logger: log.WithField("component", "storage"),
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database %s: %w", path, err)
	}

	s.logger.InfoWithFields("Database initialized", map[string]interface{}{
		"path": path,
	})

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if s.path != ":memory:" {
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database location the store was opened with
func (s *Store) Path() string {
	return s.path
}

// Close releases the database. Calls after the first return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
		if s.closeErr == nil {
			s.logger.Debug("Database closed")
		}
	})
	return s.closeErr
}
