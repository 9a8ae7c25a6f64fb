// Package logger wraps zerolog for navcodec commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config logger settings
type Config struct {
	Level           string `yaml:"level"`
	TimeFieldFormat string `yaml:"time_field_format"`
	PrettyPrint     bool   `yaml:"pretty_print"`
	FileName        string `yaml:"file_name"`

	// Out replaces stderr as the console destination. Used by tests.
	Out io.Writer `yaml:"-"`
}

// DefaultConfig logs human readable lines at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:           "info",
		TimeFieldFormat: time.RFC3339,
		PrettyPrint:     true,
	}
}

// Logger object capable of interacting with Logger
type Logger struct {
	zero zerolog.Logger
	file *os.File
}

// New creates a new Logger. A FileName adds a JSON log file next to the
// console output.
func New(cfg Config) (*Logger, error) {
	if cfg.TimeFieldFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFieldFormat
	}

	var console io.Writer = os.Stderr
	if cfg.Out != nil {
		console = cfg.Out
	}
	if cfg.PrettyPrint {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime, NoColor: cfg.Out != nil}
	}

	l := &Logger{}
	writers := []io.Writer{console}
	if cfg.FileName != "" {
		f, err := os.OpenFile(cfg.FileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	l.zero = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()

	return l, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{zero: zerolog.Nop()}
}

// Debug starts a new message with debug level
func (l *Logger) Debug() *zerolog.Event {
	return l.zero.Debug()
}

// Info starts a new message with info level
func (l *Logger) Info() *zerolog.Event {
	return l.zero.Info()
}

// Warn starts a new message with warn level
func (l *Logger) Warn() *zerolog.Event {
	return l.zero.Warn()
}

// Error starts a new message with error level
func (l *Logger) Error() *zerolog.Event {
	return l.zero.Error()
}

// With returns a child logger carrying the fields added by fn.
func (l *Logger) With(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{zero: fn(l.zero.With()).Logger(), file: l.file}
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level string) {
	l.zero = l.zero.Level(ParseLevel(level))
}

// Zerolog exposes the underlying logger for libraries that accept one.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zero
}

// Printf sends the event with formatted msg with debug level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zero.Debug().Msgf(format, v...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a level name to zerolog. Unknown names mean info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}
