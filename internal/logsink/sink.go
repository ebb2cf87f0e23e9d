package logsink

import (
	"fmt"
	"strings"
)

// Level is the severity of a log entry.
type Level int

// Supported levels, lowest first.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Sink accepts leveled messages with optional key/value pairs.
type Sink interface {
	Log(level Level, msg string, keyvals ...any)
}

// Func adapts a function to the Sink interface.
type Func func(level Level, msg string, keyvals ...any)

// Log calls f.
func (f Func) Log(level Level, msg string, keyvals ...any) { f(level, msg, keyvals...) }

// Discard is a Sink that drops everything.
var Discard Sink = Func(func(Level, string, ...any) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Debug logs msg at DebugLevel.
func Debug(s Sink, msg string, keyvals ...any) { OrDiscard(s).Log(DebugLevel, msg, keyvals...) }

// Info logs msg at InfoLevel.
func Info(s Sink, msg string, keyvals ...any) { OrDiscard(s).Log(InfoLevel, msg, keyvals...) }

// Warn logs msg at WarnLevel.
func Warn(s Sink, msg string, keyvals ...any) { OrDiscard(s).Log(WarnLevel, msg, keyvals...) }

// Error logs msg at ErrorLevel.
func Error(s Sink, msg string, keyvals ...any) { OrDiscard(s).Log(ErrorLevel, msg, keyvals...) }
