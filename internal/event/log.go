package event

import (
	"context"
	"log/slog"
)

// LogMessage is the message of every structured event record.
const LogMessage = "assetsync.event"

// Log writes ev as a structured record at debug level.
func Log(logger *slog.Logger, ev Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("session", ev.Session),
	}
	if ev.Path != "" {
		attrs = append(attrs, slog.String("path", ev.Path))
	}
	switch ev.Type {
	case FileStarted, FileCompleted, FileFailed:
		attrs = append(attrs, slog.Int("index", ev.Index), slog.Int("total", ev.Total))
	case ScanComplete, SessionComplete:
		attrs = append(attrs, slog.Int("total", ev.Total))
	}
	if ev.Size > 0 {
		attrs = append(attrs, slog.Int64("size", ev.Size))
	}
	if ev.Reason != "" {
		attrs = append(attrs, slog.String("reason", ev.Reason))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, LogMessage, attrs...)
}

// Recorder returns a function suitable for Channel.SetRecorder that logs
// every event through logger.
func Recorder(logger *slog.Logger) func(Event) {
	return func(ev Event) { Log(logger, ev) }
}
