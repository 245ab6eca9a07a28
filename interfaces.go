package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

// SourceFactory creates the data source lookups read from.
type SourceFactory func(cfg *Config) (lookup.Source, error)

// Chooser asks the user to pick one of repos and returns its name.
type Chooser func(repos []lookup.Repository) (string, error)

// Environment holds the collaborators Run hands work to.
type Environment struct {
	Sources   SourceFactory
	Browser   view.Browser
	Clipboard view.Clipboard
	// Choose is nil when nobody can be asked, e.g. without a terminal.
	Choose Chooser
	Logger *log.Entry
}
