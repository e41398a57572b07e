// Package storage owns the SQLite database of a harvest.
//
// Two tables live in one file:
//
//	aqi_data(date, zip_code, data)      observations, primary key (date, zip_code)
//	script_progress(year, month, day, zip_code_index)   a single cursor row
//
// Observations are written with INSERT OR IGNORE, so storing the same
// (date, location) twice keeps the first payload and is not an error. The
// cursor methods implement checkpoint.Backend.
//
// The database uses the pure-Go modernc.org/sqlite driver. A Store is opened
// once per process and must be closed by its opener; Close is idempotent.
package storage
