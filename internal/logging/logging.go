// Package logging adapts package slog to the needs of the converters.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace is below slog.LevelDebug and used for per-node logs.
const LevelTrace slog.Level = -8

// LevelString returns a string naming the level.
func LevelString(level slog.Level) string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return level.String()
	}
}

// LookupLevel returns the level named by text and whether text names one.
// Prefixes of at least two letters are accepted.
func LookupLevel(text string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "TR", "TRA", "TRAC", "TRACE":
		return LevelTrace, true
	case "DE", "DEB", "DEBU", "DEBUG":
		return slog.LevelDebug, true
	case "IN", "INF", "INFO":
		return slog.LevelInfo, true
	case "WA", "WAR", "WARN":
		return slog.LevelWarn, true
	case "ER", "ERR", "ERRO", "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// ParseLevel returns the level named by text, or slog.LevelInfo.
func ParseLevel(text string) slog.Level {
	level, _ := LookupLevel(text)
	return level
}

// LogTrace writes a trace log message.
func LogTrace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Err returns a log attribute, if an error occurred.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("err", err)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// NewHandler builds a text or JSON handler writing records at or above level.
func NewHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(LevelString(lvl))
				}
			}
			return a
		},
	}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
