package main

import (
	"fmt"
	"io"
)

// ActionFormatter reports the outcome of a repository action.
type ActionFormatter struct{}

// Format prints the action's notification, if any.
func (f *ActionFormatter) Format(w io.Writer, result Result, config *Config) error {
	actionResult, ok := result.(ActionResult)
	if !ok {
		return fmt.Errorf("ActionFormatter expects ActionResult, got %T", result)
	}

	switch {
	case actionResult.Notification != nil:
		fmt.Fprintln(w, actionResult.Notification.Title)
		fmt.Fprintln(w, actionResult.Notification.Description)
	case actionResult.Action == ActionOpen:
		fmt.Fprintf(w, "Opening %s in your browser.\n", actionResult.Repository.HTMLURL)
	}
	return nil
}

// VersionFormatter prints build information.
type VersionFormatter struct{}

func (f *VersionFormatter) Format(w io.Writer, result Result, config *Config) error {
	versionResult, ok := result.(VersionResult)
	if !ok {
		return fmt.Errorf("VersionFormatter expects VersionResult, got %T", result)
	}

	info := versionResult.Info
	fmt.Fprintf(w, "%s version %s\n", programName, info.Version)
	fmt.Fprintf(w, "Built: %s\n", info.BuildTime)
	fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)
	return nil
}

// FormatResult determines the appropriate formatter based on the result type and config.
func FormatResult(w io.Writer, result Result, config *Config) error {
	switch r := result.(type) {
	case nil:
		return nil
	case ActionResult:
		formatter := &ActionFormatter{}
		return formatter.Format(w, result, config)
	case VersionResult:
		formatter := &VersionFormatter{}
		return formatter.Format(w, result, config)
	case LookupResult:
		var formatter Formatter
		switch config.Output {
		case "detailed":
			formatter = &DetailedFormatter{}
		case "quiet":
			formatter = &QuietFormatter{}
		case "json":
			formatter = &JSONFormatter{}
		default:
			formatter = &TabularFormatter{}
		}
		return formatter.Format(w, result, config)
	default:
		return fmt.Errorf("unknown result type: %T", r)
	}
}
