// Package main implements a GitHub user lookup tool: it shows a
// user's profile and public repositories in an interactive terminal
// UI, as one-shot command output, or as a web page.
//
// Features:
//   - Fetches the profile and repository list concurrently
//   - Keeps whatever part of a lookup succeeded when the other fails
//   - Ignores responses for handles that are no longer being viewed
//   - Opens repositories in the browser or copies their clone URLs
//   - Reads an optional token from the environment, a .env file or gh
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cli/go-gh/pkg/browser"
	"github.com/cli/go-gh/pkg/term"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/github"
	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

func main() {
	args := os.Args[1:]

	if err := LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	settings, err := LoadSettings(configFlag(args))
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	config, err := Parse(args, settings)
	if err != nil {
		log.Fatalf("CLI parsing failed: %v", err)
	}

	closeLog, err := configureLogger(log.StandardLogger(), config)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeLog()

	terminal := term.FromEnv()
	config.IsTTY = terminal.IsTerminalOutput()
	if width, _, err := terminal.Size(); err == nil {
		config.TerminalWidth = width
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := Run(ctx, config, newEnvironment(config, terminal))
	if err != nil {
		fatal(err)
	}

	if err := FormatResult(terminal.Out(), result, config); err != nil {
		fatal(err)
	}
}

// newEnvironment wires the real collaborators. Repository selection is
// only offered when both stdin and stdout are terminals.
func newEnvironment(config *Config, terminal term.Term) *Environment {
	b := browser.New("", terminal.Out(), terminal.ErrOut())
	env := &Environment{
		Sources:   newSource,
		Browser:   &b,
		Clipboard: view.SystemClipboard{},
		Logger:    log.NewEntry(log.StandardLogger()),
	}
	if config.IsTTY && isatty.IsTerminal(os.Stdin.Fd()) {
		env.Choose = chooseRepository
	}
	return env
}

func newSource(config *Config) (lookup.Source, error) {
	return github.NewClient(github.Options{
		BaseURL:   config.APIURL,
		Token:     config.Token,
		PerPage:   config.PerPage,
		UserAgent: UserAgent(),
		Logger:    log.WithField("component", "github"),
	})
}

// configFlag finds --config before flags are parsed, because the
// settings it names supply the flag defaults.
func configFlag(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("GHLOOKUP_CONFIG")
}

// fatal reports err on stderr even when logs were redirected.
func fatal(err error) {
	log.SetOutput(os.Stderr)
	log.Fatalf("%v", err)
}
