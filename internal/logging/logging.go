// Package logging builds the zerolog logger shared by the CLI, the MCP
// server and the pipeline.
//
// Logs always go to stderr because stdout carries the MCP protocol. When a
// log file is configured, output is also written there through a rotating
// lumberjack writer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", ...).
	// Empty means info.
	Level string

	// File, when set, receives a copy of every log line.
	File string

	// Console switches stderr output to zerolog's human-readable format.
	Console bool
}

// New returns a logger writing to stderr and, optionally, a rotating file.
// The returned closer releases the file and is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	return newLogger(os.Stderr, opts)
}

func newLogger(stderr io.Writer, opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var out io.Writer = stderr
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "car-spotter").
		Logger()

	return logger, closer, nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
