package main

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed embedded/defaults.yaml
var embeddedSettings embed.FS

const embeddedSettingsFile = "embedded/defaults.yaml"

var (
	validOutputs  = []string{"table", "quiet", "detailed", "json"}
	validTriggers = []string{"submit", "blur"}
)

// Settings are the file-backed defaults that command-line flags and
// environment variables override.
type Settings struct {
	Handle          string        `yaml:"handle"`
	Token           string        `yaml:"token"`
	APIURL          string        `yaml:"api_url"`
	PerPage         int           `yaml:"per_page"`
	Timeout         time.Duration `yaml:"timeout"`
	AllowStale      bool          `yaml:"allow_stale"`
	Output          string        `yaml:"output"`
	Trigger         string        `yaml:"trigger"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	Listen          string        `yaml:"listen"`
	CORSOrigins     []string      `yaml:"cors_origins"`

	// Sources lists where values were loaded from, lowest precedence
	// first.
	Sources []string `yaml:"-"`
}

// SettingsLoadMode controls which settings files are read.
type SettingsLoadMode int

const (
	SettingsLoadNothing  SettingsLoadMode = 0
	SettingsLoadEmbedded SettingsLoadMode = 1
	SettingsLoadUser     SettingsLoadMode = 2
	SettingsLoadAll      SettingsLoadMode = 3
)

// LoadSettings reads the embedded defaults and then the user file. An
// explicit path must exist; the default user file is optional.
func LoadSettings(path string) (*Settings, error) {
	return LoadSettingsWithMode(SettingsLoadAll, path)
}

func LoadSettingsWithMode(mode SettingsLoadMode, path string) (*Settings, error) {
	s := &Settings{}

	if mode&SettingsLoadEmbedded != 0 {
		content, err := embeddedSettings.ReadFile(embeddedSettingsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded settings: %w", err)
		}
		if err := s.merge(content, "embedded"); err != nil {
			return nil, err
		}
	}

	if mode&SettingsLoadUser != 0 {
		if err := s.loadUser(path); err != nil {
			return nil, err
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) loadUser(path string) error {
	explicit := path != ""
	if !explicit {
		p, err := userSettingsPath()
		if err != nil {
			log.WithError(err).Debug("no user settings directory")
			return nil
		}
		path = p
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	return s.merge(content, path)
}

func (s *Settings) merge(content []byte, source string) error {
	if err := yaml.Unmarshal(content, s); err != nil {
		return fmt.Errorf("failed to parse settings %s: %w", source, err)
	}
	s.Sources = append(s.Sources, source)
	return nil
}

func userSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "ghlookup", "config.yaml"), nil
}

func (s *Settings) validate() error {
	if s.Output != "" && !slices.Contains(validOutputs, s.Output) {
		return fmt.Errorf("invalid output %q, must be one of: %s", s.Output, strings.Join(validOutputs, ", "))
	}
	if s.Trigger != "" && !slices.Contains(validTriggers, s.Trigger) {
		return fmt.Errorf("invalid trigger %q, must be one of: %s", s.Trigger, strings.Join(validTriggers, ", "))
	}
	if s.PerPage < 0 || s.PerPage > 100 {
		return fmt.Errorf("per_page must be between 1 and 100, got %d", s.PerPage)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	if s.NotificationTTL < 0 {
		return fmt.Errorf("notification_ttl must not be negative, got %s", s.NotificationTTL)
	}
	return nil
}

// Vars exposes the settings as kong interpolation variables so they
// become the flag defaults.
func (s *Settings) Vars() kong.Vars {
	return kong.Vars{
		"handle":           s.Handle,
		"api_url":          s.APIURL,
		"per_page":         strconv.Itoa(s.PerPage),
		"timeout":          s.Timeout.String(),
		"allow_stale":      strconv.FormatBool(s.AllowStale),
		"output":           s.Output,
		"trigger":          s.Trigger,
		"notification_ttl": s.NotificationTTL.String(),
		"listen":           s.Listen,
		"cors_origins":     strings.Join(s.CORSOrigins, ","),
	}
}
