package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes resolution events to an slog.Logger.
// Useful for development when you want to see queries in console output.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Error events are logged at Warn
// level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("query_id", event.QueryID),
		slog.String("stage", event.Stage.String()),
	}

	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.Length > 0 {
		attrs = append(attrs,
			slog.Int64("offset", event.Offset),
			slog.Uint64("length", event.Length),
		)
	}
	if event.Class != "" {
		attrs = append(attrs, slog.String("class", event.Class))
	}
	if event.Sectors != nil {
		attrs = append(attrs,
			slog.Int64("sector_start", event.Sectors.Start),
			slog.Int64("sector_end", event.Sectors.End),
		)
	}
	if event.Stage == StageWalk || event.Stage == StageResult {
		attrs = append(attrs, slog.Int("endpoints", event.Endpoints))
	}

	level := slog.LevelDebug
	msg := "resolution event"
	if event.Err != "" {
		level = slog.LevelWarn
		msg = "resolution error"
		attrs = append(attrs, slog.String("error", event.Err))
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
