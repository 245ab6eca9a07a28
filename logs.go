package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// configureLogger sets level, format and destination for logger. The
// terminal UI owns the screen, so without --log-file its logs are
// dropped. The returned function closes any log file opened.
func configureLogger(logger *log.Logger, config *Config) (func() error, error) {
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level := log.InfoLevel
	if config.DebugMode {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	switch {
	case config.LogFile != "":
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		return f.Close, nil
	case config.Command == CommandTUI:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(os.Stderr)
	}

	return func() error { return nil }, nil
}
