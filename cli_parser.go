package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cli/go-gh/pkg/auth"
)

// tokenForHost reads the token stored by the gh CLI.
var tokenForHost = auth.TokenForHost

type cli struct {
	Config     string        `help:"Read settings from FILE instead of ~/.config/ghlookup/config.yaml." type:"path" placeholder:"FILE" env:"GHLOOKUP_CONFIG"`
	Token      string        `help:"GitHub token sent as 'Authorization: token X'." env:"GHLOOKUP_TOKEN,GITHUB_TOKEN"`
	GHAuth     bool          `name:"gh-auth" help:"Use the token stored by the gh CLI when no other token is set."`
	APIURL     string        `name:"api-url" help:"GitHub REST API base URL." default:"${api_url}" env:"GHLOOKUP_API_URL"`
	PerPage    int           `name:"per-page" help:"Repositories requested per lookup (1-100)." default:"${per_page}" env:"GHLOOKUP_PER_PAGE"`
	Timeout    time.Duration `help:"Per-request timeout, 0 for none." default:"${timeout}" env:"GHLOOKUP_TIMEOUT"`
	AllowStale bool          `name:"allow-stale" help:"Let results of superseded lookups overwrite newer ones." default:"${allow_stale}" negatable:""`
	Debug      bool          `help:"Enable debug logging." env:"GHLOOKUP_DEBUG"`
	LogFile    string        `name:"log-file" help:"Write logs to FILE." type:"path" placeholder:"FILE" env:"GHLOOKUP_LOG_FILE"`

	TUI     tuiCmd     `cmd:"" name:"tui" default:"withargs" help:"Browse a user's profile and repositories interactively."`
	Show    showCmd    `cmd:"" help:"Print a user's profile and repositories."`
	Open    openCmd    `cmd:"" help:"Open a repository page in the browser."`
	Copy    copyCmd    `cmd:"" help:"Copy a repository clone URL to the clipboard."`
	Serve   serveCmd   `cmd:"" help:"Serve the lookup page over HTTP."`
	Version versionCmd `cmd:"" help:"Show version information."`
}

type tuiCmd struct {
	Handle          string        `arg:"" optional:"" default:"${handle}" help:"GitHub handle, @handle or profile URL."`
	Trigger         string        `help:"Look up an edited handle on 'submit' (enter) or 'blur' (leaving the input)." enum:"submit,blur" default:"${trigger}"`
	NotificationTTL time.Duration `name:"notification-ttl" help:"How long confirmations stay visible." default:"${notification_ttl}"`
}

type showCmd struct {
	Handle string `arg:"" optional:"" default:"${handle}" help:"GitHub handle, @handle or profile URL."`
	Output string `short:"o" help:"Output format: table, quiet, detailed or json." enum:"table,quiet,detailed,json" default:"${output}"`
}

type openCmd struct {
	Handle     string `arg:"" help:"GitHub handle, handle/repo or repository URL."`
	Repository string `arg:"" optional:"" help:"Repository name."`
}

type copyCmd struct {
	Handle     string `arg:"" help:"GitHub handle, handle/repo or repository URL."`
	Repository string `arg:"" optional:"" help:"Repository name; chosen interactively when omitted."`
}

type serveCmd struct {
	Listen          string        `help:"Address to listen on." default:"${listen}" env:"GHLOOKUP_LISTEN"`
	Handle          string        `help:"Handle shown when no ?user= is given." default:"${handle}"`
	CORSOrigins     []string      `name:"cors-origin" help:"Allowed CORS origin; repeat or comma-separate, '*' for any." default:"${cors_origins}" env:"GHLOOKUP_CORS_ORIGINS"`
	NotificationTTL time.Duration `name:"notification-ttl" help:"How long the copy confirmation stays visible." default:"${notification_ttl}"`
}

type versionCmd struct{}

// Parse parses command-line arguments and returns a populated Config.
// Settings supply the flag defaults.
func Parse(args []string, settings *Settings, options ...kong.Option) (*Config, error) {
	var c cli

	opts := append([]kong.Option{
		kong.Name(programName),
		kong.Description(Description(programName)),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		settings.Vars(),
	}, options...)

	parser, err := kong.New(&c, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build command line parser: %w", err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return nil, err
	}

	return c.toConfig(kctx.Command(), settings)
}

func (c *cli) toConfig(command string, settings *Settings) (*Config, error) {
	if c.PerPage < 1 || c.PerPage > 100 {
		return nil, fmt.Errorf("--per-page must be between 1 and 100, got %d", c.PerPage)
	}
	if c.Timeout < 0 {
		return nil, fmt.Errorf("--timeout must not be negative, got %s", c.Timeout)
	}

	cfg := &Config{
		Token:      c.Token,
		APIURL:     c.APIURL,
		PerPage:    c.PerPage,
		Timeout:    c.Timeout,
		AllowStale: c.AllowStale,
		DebugMode:  c.Debug,
		LogFile:    c.LogFile,
	}
	if cfg.Token == "" {
		cfg.Token = settings.Token
	}
	if cfg.Token == "" && c.GHAuth {
		cfg.Token, _ = tokenForHost(authHost(cfg.APIURL))
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no command given")
	}
	cfg.Command = Command(fields[0])

	var err error
	switch cfg.Command {
	case CommandTUI:
		cfg.Trigger = c.TUI.Trigger
		cfg.NotificationTTL = c.TUI.NotificationTTL
		err = cfg.setHandle(c.TUI.Handle, "")
	case CommandShow:
		cfg.Output = c.Show.Output
		err = cfg.setHandle(c.Show.Handle, "")
	case CommandOpen:
		err = cfg.setHandle(c.Open.Handle, c.Open.Repository)
		if err == nil && cfg.Repository == "" {
			err = fmt.Errorf("open needs a repository: give handle/repo or a second argument")
		}
	case CommandCopy:
		err = cfg.setHandle(c.Copy.Handle, c.Copy.Repository)
	case CommandServe:
		cfg.Listen = c.Serve.Listen
		cfg.NotificationTTL = c.Serve.NotificationTTL
		cfg.CORSOrigins = nonEmpty(c.Serve.CORSOrigins)
		err = cfg.setHandle(c.Serve.Handle, "")
	case CommandVersion:
	default:
		err = fmt.Errorf("unknown command %q", cfg.Command)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// setHandle resolves a handle argument. An explicit repository argument
// wins over one embedded in the handle.
func (cfg *Config) setHandle(arg, repo string) error {
	ref, err := ParseHandleArgument(arg)
	if err != nil {
		return err
	}
	cfg.Handle = ref.Handle
	cfg.Repository = ref.Repository
	if repo != "" {
		cfg.Repository = repo
	}
	return nil
}

// authHost maps an API base URL to the host the gh CLI stores tokens
// under.
func authHost(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Hostname() == "" {
		return "github.com"
	}
	host := u.Hostname()
	if host == "api.github.com" {
		return "github.com"
	}
	return strings.TrimPrefix(host, "api.")
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
