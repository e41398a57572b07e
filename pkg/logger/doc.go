// Package logger provides the structured logging interface used by aqiscraper.
//
// It wraps zerolog behind a small Logger interface with field helpers:
//
//	logger.Initialize(&cfg.Logging)
//	defer logger.Close()
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Data saved", map[string]interface{}{
//	    "zip_code": "02109",
//	    "date":     "2022-06-15",
//	})
//
// Output always goes to the console. When logging.file is configured the same
// events are appended to that file without colour codes, one timestamped,
// severity-tagged line per event.
//
// NewTestLogger captures messages for assertions; NewNopLogger discards them.
package logger
