// Package checkpoint records how far a harvest has progressed so it can
// resume after an interruption.
//
// Progress is a single Cursor naming the next (year, month, day, location)
// unit to attempt. The Manager reads it once at startup, creating the
// initial cursor on the very first run, and overwrites it after every unit
// whose observation was stored. A unit that failed to fetch never moves the
// cursor, so a later run retries it only if it lies at or after the cursor.
//
// Persistence is delegated to a Backend; the SQLite store in pkg/storage
// keeps the cursor in a one-row table next to the observations.
package checkpoint
