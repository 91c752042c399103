// Package logging configures the global zerolog logger and the request and
// error logs written by the HTTP layer.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/auth-service/internal/config"
)

const (
	rotationTime = 24 * time.Hour
	maxAge       = 14 * 24 * time.Hour
)

// Logs holds the request and error loggers
type Logs struct {
	Request zerolog.Logger
	Error   zerolog.Logger

	closers []io.Closer
}

// Setup configures the global logger and returns the request and error loggers.
// When cfg.Dir is set both are also written to daily rotated files.
func Setup(cfg config.LoggingConfig, production bool) (*Logs, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	if !production && cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	logs := &Logs{Request: log.Logger, Error: log.Logger}
	if cfg.Dir == "" {
		return logs, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	reqFile, err := rotated(cfg.Dir, "reqLog")
	if err != nil {
		return nil, err
	}
	errFile, err := rotated(cfg.Dir, "errLog")
	if err != nil {
		reqFile.Close()
		return nil, err
	}

	logs.Request = zerolog.New(zerolog.MultiLevelWriter(out, reqFile)).With().Timestamp().Logger()
	logs.Error = zerolog.New(zerolog.MultiLevelWriter(out, errFile)).With().Timestamp().Logger()
	logs.closers = append(logs.closers, reqFile, errFile)

	return logs, nil
}

// Close flushes and closes the rotated files
func (l *Logs) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

func rotated(dir, name string) (*rotatelogs.RotateLogs, error) {
	return rotatelogs.New(
		filepath.Join(dir, name+"-%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, name+".log")),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotationTime),
	)
}
