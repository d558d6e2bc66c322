// Package logging builds the run log: logrus with a console writer and an
// optional rotating file (lumberjack).
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Standard field names shared by every run-log entry.
const (
	FieldJobID      = "job_id"
	FieldStage      = "stage"
	FieldSlide      = "slide"
	FieldOrdinal    = "ordinal"
	FieldStatus     = "status"
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldEngine     = "engine"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultFileName is the run-log file name used when only a directory is known.
const DefaultFileName = "converter.log"

// Rotation settings for the run-log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidFormat is returned for an unknown log format.
var ErrInvalidFormat = errors.New("invalid log format")

// Config configures the run log.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // console writer, nil means stderr
	File   string    // rotating log file, "" disables
}

// Logger is the run log. Close flushes and releases the log file.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// New builds a Logger. An unknown level falls back to info; an unknown
// format is an error.
func New(cfg Config) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	default:
		return nil, fmt.Errorf("%w: %q (use text or json)", ErrInvalidFormat, cfg.Format)
	}

	console := cfg.Output
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{Logger: log}
	if cfg.File == "" {
		log.SetOutput(console)
		return l, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	log.SetOutput(io.MultiWriter(console, file))
	l.closer = file
	return l, nil
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
