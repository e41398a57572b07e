package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogUnitSaved records a work unit whose observation was persisted
func LogUnitSaved(l Logger, location, date string, inserted bool) {
	fields := map[string]interface{}{
		"zip_code": location,
		"date":     date,
	}
	if inserted {
		l.InfoWithFields("Data saved", fields)
		return
	}
	l.InfoWithFields("Data already stored, insert ignored", fields)
}

// LogUnitSkipped records a work unit that produced no data
func LogUnitSkipped(l Logger, location, date, kind string) {
	l.WarnWithFields("No data retrieved", map[string]interface{}{
		"zip_code": location,
		"date":     date,
		"kind":     kind,
	})
}

// LogHarvestProgress logs how far through the work plan the run is
func LogHarvestProgress(l Logger, done, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(done) / float64(total) * 100
	}

	l.DebugWithFields("Harvest progress", map[string]interface{}{
		"done":       done,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	l.WithField("component", component).InfoWithFields("Component started", settings)
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
