package harvest

import (
	"context"
	"time"

	"aqiscraper/pkg/airnow"
	"aqiscraper/pkg/checkpoint"
)

// Fetcher retrieves the observation of one location and day
type Fetcher interface {
	Fetch(ctx context.Context, locationID string, date time.Time) airnow.Result
}

// ObservationWriter persists fetched observations
type ObservationWriter interface {
	PutObservation(ctx context.Context, date, locationID string, payload []byte) (bool, error)
}

// CursorStore loads and advances the harvest cursor
type CursorStore interface {
	Load(ctx context.Context) (checkpoint.Cursor, error)
	Advance(ctx context.Context, c checkpoint.Cursor) error
}
