package logsink

import (
	"io"

	"github.com/charmbracelet/log"
)

// CharmOptions configures a Charm sink.
type CharmOptions struct {
	Prefix     string
	Level      Level
	Timestamps bool
}

// Charm renders entries with a charmbracelet/log logger.
type Charm struct {
	logger *log.Logger
}

// NewCharm creates a Charm sink writing to w.
func NewCharm(w io.Writer, opts CharmOptions) *Charm {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          opts.Prefix,
		Level:           charmLevel(opts.Level),
		ReportTimestamp: opts.Timestamps,
	})
	return &Charm{logger: logger}
}

// Log implements Sink.
func (c *Charm) Log(level Level, msg string, keyvals ...any) {
	c.logger.Log(charmLevel(level), msg, keyvals...)
}

// SetLevel changes the minimum rendered level.
func (c *Charm) SetLevel(level Level) {
	c.logger.SetLevel(charmLevel(level))
}

func charmLevel(l Level) log.Level {
	switch l {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
