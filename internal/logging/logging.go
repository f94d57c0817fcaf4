// Package logging sets up the logrus logger shared by bm components.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Params holds parameters for creating a logger.
type Params struct {
	Level string // logrus level name, defaults to warn
	Path  string // log file, empty = stderr
}

// New creates a logger writing to Params.Path.
// The TUI owns the terminal, so file logging is the normal mode. If the file
// can't be opened the logger falls back to stderr and the error is returned
// alongside it.
func New(params Params) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	level, err := logrus.ParseLevel(params.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if params.Path == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(params.Path), 0750); err != nil {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, err
	}

	file, err := os.OpenFile(params.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, err
	}

	logger.SetOutput(file)
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops everything. Used in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Component returns an entry tagged with the component name.
func Component(logger logrus.FieldLogger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
