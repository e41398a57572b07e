package checkpoint

import (
	"context"
	"fmt"

	"aqiscraper/pkg/logger"
)

// Cursor names the next work unit to attempt. It is the only harvest state
// that survives a restart.
type Cursor struct {
	Year          int `json:"year"`
	Month         int `json:"month"`
	Day           int `json:"day"`
	LocationIndex int `json:"location_index"`
}

func (c Cursor) String() string {
	return fmt.Sprintf("%04d-%02d-%02d#%d", c.Year, c.Month, c.Day, c.LocationIndex)
}

// Backend persists the single cursor row
type Backend interface {
	// LoadOrCreateCursor returns the stored cursor, inserting initial first
	// if none exists. Both steps happen atomically.
	LoadOrCreateCursor(ctx context.Context, initial Cursor) (Cursor, error)
	// SaveCursor overwrites the stored cursor
	SaveCursor(ctx context.Context, c Cursor) error
}

// Manager handles checkpoint operations
type Manager struct {
	backend Backend
	initial Cursor
	logger  logger.Logger
}

// NewManager creates a checkpoint manager whose first-run cursor is initial
func NewManager(backend Backend, initial Cursor, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{
		backend: backend,
		initial: initial,
		logger:  log.WithField("component", "checkpoint"),
	}
}

// Load returns the persisted cursor, creating the initial one on first run
func (m *Manager) Load(ctx context.Context) (Cursor, error) {
	c, err := m.backend.LoadOrCreateCursor(ctx, m.initial)
	if err != nil {
		return Cursor{}, fmt.Errorf("failed to load cursor: %w", err)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"year":           c.Year,
		"month":          c.Month,
		"day":            c.Day,
		"location_index": c.LocationIndex,
		"fresh":          c == m.initial,
	})

	return c, nil
}

// Advance overwrites the persisted cursor. No history is kept.
func (m *Manager) Advance(ctx context.Context, c Cursor) error {
	if err := m.backend.SaveCursor(ctx, c); err != nil {
		return fmt.Errorf("failed to save cursor %s: %w", c, err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"cursor": c.String(),
	})

	return nil
}
