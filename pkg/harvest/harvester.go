package harvest

import (
	"context"
	"fmt"
	"time"

	errs "aqiscraper/pkg/errors"
	"aqiscraper/pkg/logger"
	"aqiscraper/pkg/ratelimit"
	"aqiscraper/pkg/workunit"

	"github.com/google/uuid"
)

// Summary counts what a run did
type Summary struct {
	RunID string
	// Attempted counts units whose fetch was started
	Attempted int
	// Saved counts newly inserted observations
	Saved int
	// Duplicates counts successful fetches whose key was already stored
	Duplicates int
	// Skipped counts failed fetches; their units were not persisted
	Skipped       int
	SkippedByKind map[errs.Kind]int
	Elapsed       time.Duration
}

// Dependencies wires a Harvester to its collaborators
type Dependencies struct {
	Fetcher      Fetcher
	Observations ObservationWriter
	Cursors      CursorStore
	Pacer        ratelimit.Pacer
	Logger       logger.Logger
}

// Harvester walks the work plan once, fetching and storing every unit at or
// after the persisted cursor
type Harvester struct {
	plan         *workunit.Plan
	fetcher      Fetcher
	observations ObservationWriter
	cursors      CursorStore
	pacer        ratelimit.Pacer
	logger       logger.Logger
}

// New creates a Harvester. A nil Pacer disables pacing.
func New(plan *workunit.Plan, deps Dependencies) *Harvester {
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	pacer := deps.Pacer
	if pacer == nil {
		pacer = ratelimit.NewFixedDelay(0)
	}

	return &Harvester{
		plan:         plan,
		fetcher:      deps.Fetcher,
		observations: deps.Observations,
		cursors:      deps.Cursors,
		pacer:        pacer,
		logger:       log,
	}
}

// Run processes units until the plan is exhausted. A failed fetch is logged
// and skipped; store errors, an invalid cursor and cancellation end the run
// with an error. The summary is valid in both cases.
func (h *Harvester) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{
		RunID:         uuid.NewString(),
		SkippedByKind: make(map[errs.Kind]int),
	}
	log := h.logger.WithField("run_id", summary.RunID)
	finish := func(err error) (Summary, error) {
		summary.Elapsed = time.Since(start)
		return summary, err
	}

	cursor, err := h.cursors.Load(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load checkpoint")
		return finish(err)
	}

	position, err := h.plan.Ordinal(cursor)
	if err != nil {
		log.WithError(err).WithField("cursor", cursor.String()).Error("Stored cursor is invalid")
		return finish(fmt.Errorf("invalid stored cursor %s: %w", cursor, err))
	}

	units, err := h.plan.Enumerate(cursor)
	if err != nil {
		return finish(fmt.Errorf("failed to enumerate from %s: %w", cursor, err))
	}

	logger.LogComponentStart(log, "harvest", map[string]interface{}{
		"cursor":    cursor.String(),
		"remaining": h.plan.Total() - position,
		"total":     h.plan.Total(),
		"locations": h.plan.Locations(),
		"years":     h.plan.Years(),
	})

	for {
		if err := ctx.Err(); err != nil {
			log.WarnWithFields("Harvest interrupted", map[string]interface{}{
				"cursor": cursor.String(),
			})
			return finish(err)
		}

		unit, ok := units.Next()
		if !ok {
			break
		}

		summary.Attempted++
		res := h.fetcher.Fetch(ctx, unit.Location, unit.Date())
		if !res.OK() {
			if ctx.Err() != nil {
				// cancellation surfaced as a fetch failure; not a real skip
				summary.Attempted--
				continue
			}
			summary.Skipped++
			summary.SkippedByKind[res.Failure.Kind]++
			logger.LogUnitSkipped(log, unit.Location, unit.DateString(), string(res.Failure.Kind))
			continue
		}

		inserted, err := h.observations.PutObservation(ctx, unit.DateString(), unit.Location, res.Payload)
		if err != nil {
			log.WithError(err).WithField("unit", unit.String()).Error("Failed to store observation")
			return finish(err)
		}
		if inserted {
			summary.Saved++
		} else {
			summary.Duplicates++
		}
		logger.LogUnitSaved(log, unit.Location, unit.DateString(), inserted)

		next := h.plan.Successor(unit)
		nextPosition, err := h.plan.Ordinal(next)
		if err != nil {
			return finish(fmt.Errorf("invalid successor of %s: %w", unit, err))
		}
		if nextPosition <= position {
			return finish(fmt.Errorf("cursor would move backwards from %s to %s", cursor, next))
		}
		if err := h.cursors.Advance(ctx, next); err != nil {
			log.WithError(err).WithField("cursor", next.String()).Error("Failed to save checkpoint")
			return finish(err)
		}
		cursor, position = next, nextPosition
		logger.LogHarvestProgress(log, position, h.plan.Total())

		if err := h.pacer.Pace(ctx); err != nil {
			log.WarnWithFields("Harvest interrupted", map[string]interface{}{
				"cursor": cursor.String(),
			})
			return finish(err)
		}
	}

	log.InfoWithFields("Data fetching complete.", map[string]interface{}{
		"attempted":  summary.Attempted,
		"saved":      summary.Saved,
		"duplicates": summary.Duplicates,
		"skipped":    summary.Skipped,
		"by_kind":    skippedByKind(summary.SkippedByKind),
		"elapsed":    time.Since(start),
	})

	return finish(nil)
}

// skippedByKind renders non-zero skip counts as kind=count in a fixed kind order
func skippedByKind(counts map[errs.Kind]int) []string {
	out := []string{}
	for _, kind := range errs.Kinds {
		if n := counts[kind]; n > 0 {
			out = append(out, fmt.Sprintf("%s=%d", kind, n))
		}
	}
	return out
}
