// Package logging builds the logrus logger used across a run.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level, format and destination of log output.
type Config struct {
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
	// Output is "stdout", "stderr" or a file path.
	Output string `mapstructure:"output"`
}

// Defaults used for empty Config fields.
const (
	DefaultLevel  = "info"
	DefaultFormat = "text"
	DefaultOutput = "stderr"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger from cfg. An invalid level or an unopenable file is
// reported through the logger and replaced by the default. The returned
// closer releases the log file, if any.
func New(cfg Config) (*logrus.Logger, io.Closer) {
	log := logrus.New()

	var closer io.Closer = nopCloser{}

	switch out := strings.TrimSpace(cfg.Output); strings.ToLower(out) {
	case "", "stderr":
		log.SetOutput(os.Stderr)
	case "stdout":
		log.SetOutput(os.Stdout)
	default:
		file, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.SetOutput(os.Stderr)
			log.Warnf("Failed to open log file '%s', using stderr instead. Error: %v", out, err)
		} else {
			log.SetOutput(file)
			closer = file
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	levelName := cfg.Level
	if strings.TrimSpace(levelName) == "" {
		levelName = DefaultLevel
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		log.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}

	log.SetLevel(level)

	return log, closer
}
