package storage

import (
	"context"
	"path/filepath"
	"testing"

	"aqiscraper/pkg/checkpoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "aqi_data.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutObservationIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.PutObservation(ctx, "2022-06-15", "02119", []byte(`[{"AQI":31}]`))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.PutObservation(ctx, "2022-06-15", "02119", []byte(`[{"AQI":99}]`))
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate key must be ignored")

	obs, ok, err := s.Observation(ctx, "2022-06-15", "02119")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"AQI":31}]`, string(obs.Payload), "first write wins")

	n, err := s.CountObservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestObservationMissing(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Observation(context.Background(), "2022-01-01", "02109")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountObservationsByLocation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, row := range []struct{ date, loc string }{
		{"2022-01-01", "02109"},
		{"2022-01-02", "02109"},
		{"2022-01-01", "02119"},
	} {
		_, err := s.PutObservation(ctx, row.date, row.loc, []byte(`[]`))
		require.NoError(t, err)
	}

	counts, err := s.CountObservationsByLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"02109": 2, "02119": 1}, counts)
}

func TestCursorCreateAndOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	initial := checkpoint.Cursor{Year: 2022, Month: 1, Day: 1}

	c, err := s.LoadOrCreateCursor(ctx, initial)
	require.NoError(t, err)
	assert.Equal(t, initial, c)

	next := checkpoint.Cursor{Year: 2022, Month: 6, Day: 15, LocationIndex: 1}
	require.NoError(t, s.SaveCursor(ctx, next))

	c, err = s.LoadOrCreateCursor(ctx, initial)
	require.NoError(t, err)
	assert.Equal(t, next, c, "existing cursor must not be replaced by the initial one")

	var rows int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM script_progress`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCursorReadOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Cursor(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.LoadOrCreateCursor(ctx, checkpoint.Cursor{Year: 2022, Month: 1, Day: 1})
	require.NoError(t, err)

	c, ok, err := s.Cursor(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, checkpoint.Cursor{Year: 2022, Month: 1, Day: 1}, c)
}

func TestSaveCursorWithoutRow(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveCursor(context.Background(), checkpoint.Cursor{Year: 2022, Month: 1, Day: 2})
	assert.Error(t, err)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aqi_data.db")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.PutObservation(ctx, "2023-03-01", "02109", []byte(`[{"AQI":12}]`))
	require.NoError(t, err)
	_, err = s.LoadOrCreateCursor(ctx, checkpoint.Cursor{Year: 2023, Month: 1, Day: 1})
	require.NoError(t, err)
	require.NoError(t, s.SaveCursor(ctx, checkpoint.Cursor{Year: 2023, Month: 3, Day: 2}))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Observation(ctx, "2023-03-01", "02109")
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := s.LoadOrCreateCursor(ctx, checkpoint.Cursor{Year: 2023, Month: 1, Day: 1})
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Cursor{Year: 2023, Month: 3, Day: 2}, c)
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestCheckpointManagerOverStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mgr := checkpoint.NewManager(s, checkpoint.Cursor{Year: 2022, Month: 1, Day: 1}, nil)

	c, err := mgr.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Cursor{Year: 2022, Month: 1, Day: 1}, c)

	require.NoError(t, mgr.Advance(ctx, checkpoint.Cursor{Year: 2022, Month: 1, Day: 2}))
	c, err = mgr.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Day)
}
