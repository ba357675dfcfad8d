package logging

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger writes through a slog.Handler. The server logs JSON lines, the
// terminal client logs text to stderr.
type SlogLogger struct {
	l *slog.Logger
}

// NewJSON builds the server logger.
func NewJSON(w io.Writer, level slog.Level) *SlogLogger {
	return newSlog(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewText builds the terminal client logger.
func NewText(w io.Writer, level slog.Level) *SlogLogger {
	return newSlog(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard drops every record.
func Discard() *SlogLogger {
	return newSlog(slog.DiscardHandler)
}

func newSlog(h slog.Handler) *SlogLogger {
	return &SlogLogger{l: slog.New(h)}
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	s.l.Log(ctx, level, msg, args...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
