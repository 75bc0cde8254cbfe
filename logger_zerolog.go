package mqttpub

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
// It is safe for concurrent use, SetLevel included.
type ZerologLogger struct {
	logger zerolog.Logger
	level  atomic.Int32
}

// NewZerologLogger wraps logger. Entries below level are dropped before they
// reach zerolog; zerolog's own level still applies after that.
func NewZerologLogger(logger zerolog.Logger, level LogLevel) *ZerologLogger {
	z := &ZerologLogger{logger: logger}
	z.level.Store(int32(level))
	return z
}

// Debug logs a debug message.
func (z *ZerologLogger) Debug(msg string, fields LogFields) {
	z.write(LogLevelDebug, msg, fields)
}

// Info logs an info message.
func (z *ZerologLogger) Info(msg string, fields LogFields) {
	z.write(LogLevelInfo, msg, fields)
}

// Warn logs a warning message.
func (z *ZerologLogger) Warn(msg string, fields LogFields) {
	z.write(LogLevelWarn, msg, fields)
}

// Error logs an error message.
func (z *ZerologLogger) Error(msg string, fields LogFields) {
	z.write(LogLevelError, msg, fields)
}

// WithFields returns a logger whose zerolog context carries fields.
func (z *ZerologLogger) WithFields(fields LogFields) Logger {
	return NewZerologLogger(z.logger.With().Fields(map[string]any(fields)).Logger(), z.Level())
}

// Level returns the current minimum level.
func (z *ZerologLogger) Level() LogLevel {
	return LogLevel(z.level.Load())
}

// SetLevel sets the minimum level.
func (z *ZerologLogger) SetLevel(level LogLevel) {
	z.level.Store(int32(level))
}

func (z *ZerologLogger) write(level LogLevel, msg string, fields LogFields) {
	current := z.Level()
	if level < current || current == LogLevelNone {
		return
	}

	event := z.logger.WithLevel(ZerologLevel(level))
	// nil when zerolog itself filters the level.
	if event == nil {
		return
	}
	if len(fields) > 0 {
		event = event.Fields(map[string]any(fields))
	}
	event.Msg(msg)
}

// ZerologLevel maps a LogLevel onto the matching zerolog level.
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
