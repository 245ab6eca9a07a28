package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/cli/go-gh/pkg/tableprinter"

	"github.com/frobware/ghlookup/view"
)

//go:embed output/templates/detailed.tmpl
var detailedTemplate string

// Template helper functions.
var templateFuncs = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"cloneCommand": CloneCommand,
}

var detailedTmpl = template.Must(template.New("detailed").Funcs(templateFuncs).Parse(detailedTemplate))

// Formatter defines the interface for different output formats.
type Formatter interface {
	Format(w io.Writer, result Result, config *Config) error
}

// TabularFormatter outputs repositories as a table.
type TabularFormatter struct{}

// DetailedFormatter outputs the profile and every repository.
type DetailedFormatter struct{}

// QuietFormatter outputs only repository names.
type QuietFormatter struct{}

// JSONFormatter outputs the page model as JSON.
type JSONFormatter struct{}

func lookupPage(result Result, formatter string) (view.Page, error) {
	lookupResult, ok := result.(LookupResult)
	if !ok {
		return view.Page{}, fmt.Errorf("%s expects LookupResult, got %T", formatter, result)
	}
	return view.NewPage(lookupResult.State), nil
}

// Format outputs repositories in tabular format. Headers are only
// printed to a terminal.
func (f *TabularFormatter) Format(w io.Writer, result Result, config *Config) error {
	page, err := lookupPage(result, "TabularFormatter")
	if err != nil {
		return err
	}

	if len(page.Repositories) == 0 {
		fmt.Fprintln(w, page.EmptyMessage)
		return nil
	}

	tp := tableprinter.New(w, config.IsTTY, config.TerminalWidth)
	if config.IsTTY {
		for _, h := range []string{"NAME", "LANGUAGE", "URL", "CLONE URL"} {
			tp.AddField(h)
		}
		tp.EndRow()
	}

	for _, repo := range page.Repositories {
		tp.AddField(repo.Name)
		tp.AddField(repo.Language)
		tp.AddField(repo.HTMLURL)
		tp.AddField(repo.CloneURL)
		tp.EndRow()
	}

	return tp.Render()
}

// Format outputs the profile and repositories using the detailed template.
func (f *DetailedFormatter) Format(w io.Writer, result Result, config *Config) error {
	page, err := lookupPage(result, "DetailedFormatter")
	if err != nil {
		return err
	}

	if err := detailedTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	return nil
}

// Format outputs only repository names.
func (f *QuietFormatter) Format(w io.Writer, result Result, config *Config) error {
	page, err := lookupPage(result, "QuietFormatter")
	if err != nil {
		return err
	}

	for _, repo := range page.Repositories {
		fmt.Fprintln(w, repo.Name)
	}
	return nil
}

// Format outputs the page model as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, result Result, config *Config) error {
	page, err := lookupPage(result, "JSONFormatter")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(page); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
