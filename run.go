package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/tui"
	"github.com/frobware/ghlookup/view"
	"github.com/frobware/ghlookup/web"
)

// Result represents the output of running the application.
type Result interface{}

// LookupResult holds the settled state of one lookup.
type LookupResult struct {
	State lookup.State
}

// ActionResult reports an action applied to a repository.
type ActionResult struct {
	Action       RepositoryAction
	Repository   lookup.Repository
	Notification *view.Notification
}

// VersionResult carries build information.
type VersionResult struct {
	Info Info
}

// Run executes the selected command. Interactive commands block until
// the user quits or ctx is done and return a nil Result.
func Run(ctx context.Context, config *Config, env *Environment) (Result, error) {
	if config.Command == CommandVersion {
		return VersionResult{Info: Get()}, nil
	}

	source, err := env.Sources(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	logger := env.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	opts := lookupOptions(config, logger)

	switch config.Command {
	case CommandTUI:
		return nil, runTUI(ctx, source, config, env, logger, opts)

	case CommandServe:
		return nil, runServer(ctx, source, config, logger, opts)

	case CommandShow:
		state, err := lookup.Resolve(ctx, source, config.Handle, opts...)
		if err != nil {
			return nil, fmt.Errorf("lookup of %q did not complete: %w", config.Handle, err)
		}
		return LookupResult{State: state}, nil

	case CommandOpen, CommandCopy:
		state, err := lookup.Resolve(ctx, source, config.Handle, opts...)
		if err != nil {
			return nil, fmt.Errorf("lookup of %q did not complete: %w", config.Handle, err)
		}
		repo, err := selectRepository(state, config.Repository, env.Choose)
		if err != nil {
			return nil, err
		}
		action := ActionOpen
		if config.Command == CommandCopy {
			action = ActionCopy
		}
		return action.Apply(env, repo)
	}

	return nil, fmt.Errorf("unknown command %q", config.Command)
}

func lookupOptions(config *Config, logger *log.Entry) []lookup.Option {
	return []lookup.Option{
		lookup.WithLogger(logger),
		lookup.WithStaleResults(config.AllowStale),
		lookup.WithRequestTimeout(config.Timeout),
	}
}

// selectRepository picks the named repository from state, asking
// choose when no name was given.
func selectRepository(state lookup.State, name string, choose Chooser) (lookup.Repository, error) {
	if len(state.Repositories) == 0 {
		return lookup.Repository{}, fmt.Errorf("%s: %s", state.Handle, view.EmptyMessage)
	}

	if name == "" {
		if choose == nil {
			return lookup.Repository{}, fmt.Errorf("no repository given for %s", state.Handle)
		}
		chosen, err := choose(state.Repositories)
		if err != nil {
			return lookup.Repository{}, err
		}
		name = chosen
	}

	repo, ok := state.FindRepository(name)
	if !ok {
		return lookup.Repository{}, fmt.Errorf("repository %q not found among the repositories listed for %s", name, state.Handle)
	}
	return repo, nil
}

func runTUI(ctx context.Context, source lookup.Source, config *Config, env *Environment, logger *log.Entry, opts []lookup.Option) error {
	ctrl := lookup.New(source, append(opts, lookup.WithInitialHandle(config.Handle))...)
	defer ctrl.Close()

	return tui.Run(ctx, ctrl, tui.Options{
		Trigger:         tui.Trigger(config.Trigger),
		NotificationTTL: config.NotificationTTL,
		Clipboard:       env.Clipboard,
		Browser:         env.Browser,
		Logger:          logger,
	})
}

func runServer(ctx context.Context, source lookup.Source, config *Config, logger *log.Entry, opts []lookup.Option) error {
	srv, err := web.NewServer(web.Options{
		Source:          source,
		DefaultHandle:   config.Handle,
		CORSOrigins:     config.CORSOrigins,
		NotificationTTL: config.NotificationTTL,
		LookupOptions:   opts,
		Logger:          logger,
		Debug:           config.DebugMode,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, config.Listen)
}
