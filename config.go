package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Command names the operation selected on the command line.
type Command string

const (
	CommandTUI     Command = "tui"
	CommandShow    Command = "show"
	CommandOpen    Command = "open"
	CommandCopy    Command = "copy"
	CommandServe   Command = "serve"
	CommandVersion Command = "version"
)

// Config holds all configuration and arguments for the application.
type Config struct {
	Command    Command
	Handle     string
	Repository string

	// GitHub access
	Token   string
	APIURL  string
	PerPage int
	Timeout time.Duration

	AllowStale bool

	// Presentation
	Output          string
	Trigger         string
	NotificationTTL time.Duration
	IsTTY           bool
	TerminalWidth   int

	// Web server
	Listen      string
	CORSOrigins []string

	// Runtime flags
	DebugMode bool
	LogFile   string
}

// LoadDotEnv reads KEY=value pairs from the given files into the
// process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
