// Package logging sets up zerolog for the CLI and adapts it to the SDK's
// Logger interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger with the specified configuration.
//
// logFile may be empty to log to stderr, in which case output is formatted
// for the console. Unknown levels fall back to info.
func New(logFile, logLevel string) zerolog.Logger {
	level := ParseLevel(logLevel)

	var output io.Writer = os.Stderr
	console := true
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			output = f
			console = false
		}
	}

	if console {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SDKLogger adapts a zerolog.Logger to pandora.Logger.
type SDKLogger struct {
	logger zerolog.Logger
}

// NewSDKLogger returns an adapter tagging entries with component=pandora.
func NewSDKLogger(logger zerolog.Logger) *SDKLogger {
	return &SDKLogger{logger: logger.With().Str("component", "pandora").Logger()}
}

// Debugf logs a formatted debug message.
func (l *SDKLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
