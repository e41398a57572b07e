// Package harvest drives a resumable AirNow harvest.
//
// A Harvester loads the persisted cursor, enumerates the remaining work units
// of the plan and handles each in turn:
//
//   - fetch the observation; on failure log a warning and move on without
//     touching the store or the cursor
//   - on success insert the observation (a duplicate key is ignored), advance
//     the cursor to the following unit, then wait for the pacer
//
// The run ends when the plan is exhausted, or with an error when a store
// write fails or ctx is cancelled. The cursor is only ever moved forward and
// only after the observation it covers has been written, so a killed process
// repeats at most the unit it was working on.
//
// The Harvester never opens or closes the database; its owner does.
package harvest
