package logging

import (
	"log/slog"
	"time"
)

// Common field names for consistent logging.
const (
	FieldRunID    = "run_id"
	FieldSeed     = "seed"
	FieldUsers    = "users"
	FieldEvents   = "events"
	FieldSink     = "sink"
	FieldPath     = "path"
	FieldAnchor   = "anchor"
	FieldDuration = "duration_ms"
	FieldError    = "error"
)

// RunID returns a slog attribute for the run ID.
func RunID(id string) slog.Attr {
	return slog.String(FieldRunID, id)
}

// Seed returns a slog attribute for the random seed.
func Seed(seed int64) slog.Attr {
	return slog.Int64(FieldSeed, seed)
}

// Users returns a slog attribute for the user count.
func Users(n int) slog.Attr {
	return slog.Int(FieldUsers, n)
}

// Events returns a slog attribute for an event count.
func Events(n int) slog.Attr {
	return slog.Int(FieldEvents, n)
}

// Sink returns a slog attribute for a sink name.
func Sink(name string) slog.Attr {
	return slog.String(FieldSink, name)
}

// Path returns a slog attribute for a file path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Anchor returns a slog attribute for the sampling anchor.
func Anchor(t time.Time) slog.Attr {
	return slog.String(FieldAnchor, t.Format(time.RFC3339))
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
