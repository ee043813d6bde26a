// Package logging configures the process-wide logrus logger: level, text formatting with full timestamps,
// and an optional size-rotated log file alongside the console.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-tiles/engine/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrInvalidLevel is returned for a log level logrus does not recognise.
var ErrInvalidLevel = errors.New("logging: invalid level")

type setup struct {
	logger  *log.Logger
	console io.Writer
}

// Option is a functional option for Setup.
type Option func(*setup)

// WithLogger configures the given logger instead of the standard one.
func WithLogger(logger *log.Logger) Option {
	return func(s *setup) {
		s.logger = logger
	}
}

// WithConsole replaces stderr as the console sink.
func WithConsole(w io.Writer) Option {
	return func(s *setup) {
		s.console = w
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup applies the log configuration. When cfg.File is set, lines go to both the console and the file.
// The file is rotated by lumberjack once it exceeds MaxSizeMB.
//
// Parameters:
//   - cfg: the log section of the engine configuration
//   - options: functional options overriding the logger or console
//
// Returns:
//   - io.Closer: closes the log file, a no-op without one
//   - error: ErrInvalidLevel if the level cannot be parsed
func Setup(cfg config.LogConfig, options ...Option) (io.Closer, error) {
	s := &setup{logger: log.StandardLogger(), console: os.Stderr}
	for _, opt := range options {
		opt(s)
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, cfg.Level)
	}
	s.logger.SetLevel(level)
	s.logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if cfg.File == "" {
		s.logger.SetOutput(s.console)
		return nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	s.logger.SetOutput(io.MultiWriter(s.console, file))
	s.logger.WithFields(log.Fields{
		"file":        cfg.File,
		"max_size_mb": cfg.MaxSizeMB,
		"max_backups": cfg.MaxBackups,
	}).Debug("logging to file")
	return file, nil
}
