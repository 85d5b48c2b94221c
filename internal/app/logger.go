package app

import (
	"io"
	"log/slog"
	"time"
)

// newLogger builds the logger for one App from its validated settings. The
// global slog logger is never touched, so several apps can run side by side.
func newLogger(appConfig *Config, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if appConfig.LogLevel != "" {
		// Validation already limited the value to slog level names.
		_ = level.UnmarshalText([]byte(appConfig.LogLevel))
	}

	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: roundDurations}
	if appConfig.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}

// roundDurations trims node and run timings to microseconds.
func roundDurations(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		a.Value = slog.DurationValue(a.Value.Duration().Round(time.Microsecond))
	}
	return a
}
