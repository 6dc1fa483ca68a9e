package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the level and output format of a logger.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// Format is console (human readable) or json. Empty means console.
	Format string
}

// Logger writes structured log messages through zerolog.
type Logger struct {
	log zerolog.Logger
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	switch opts.Format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	case "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{log: log}, nil
}

// NewStderr creates a logger that writes to stderr.
func NewStderr(opts Options) (*Logger, error) {
	return New(os.Stderr, opts)
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return &Logger{log: zerolog.Nop()}
}

// Debug logs a debug message. args are alternating keys and values.
func (l *Logger) Debug(msg string, args ...any) {
	l.log.Debug().Fields(fields(args)).Msg(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.log.Info().Fields(fields(args)).Msg(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) {
	l.log.Warn().Fields(fields(args)).Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log.Error().Fields(fields(args)).Msg(msg)
}

// fields renders fmt.Stringer values as text so enums such as
// domain.Direction are not encoded as numbers.
func fields(args []any) []any {
	out := make([]any, len(args))
	for i, v := range args {
		if _, isErr := v.(error); !isErr {
			if s, ok := v.(fmt.Stringer); ok {
				v = s.String()
			}
		}
		out[i] = v
	}
	return out
}
