package cachecall

import (
	"fmt"
	"strings"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around logging stack.
// If Logger is nil in Options, logging is disabled.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NoticeLogger is implemented by loggers with a level between info and warn.
// Loggers without it receive notice events at info.
type NoticeLogger interface {
	Notice(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields)  {}
func (NopLogger) Info(string, Fields)   {}
func (NopLogger) Notice(string, Fields) {}
func (NopLogger) Warn(string, Fields)   {}
func (NopLogger) Error(string, Fields)  {}

// Level is a log level label.
type Level string

const (
	LevelDebug  Level = "debug"
	LevelInfo   Level = "info"
	LevelNotice Level = "notice"
	LevelWarn   Level = "warn"
	LevelError  Level = "error"
)

// ParseLevel maps a label (case-insensitive, "warning" accepted) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("%w: log level %q", ErrInvalidArgument, s)
	}
}

// logAt dispatches msg to the method matching lvl.
func logAt(l Logger, lvl Level, msg string, f Fields) {
	switch lvl {
	case LevelDebug:
		l.Debug(msg, f)
	case LevelNotice:
		if n, ok := l.(NoticeLogger); ok {
			n.Notice(msg, f)
			return
		}
		l.Info(msg, f)
	case LevelWarn:
		l.Warn(msg, f)
	case LevelError:
		l.Error(msg, f)
	default:
		l.Info(msg, f)
	}
}
