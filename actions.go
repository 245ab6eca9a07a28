package main

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

// RepositoryAction is an operation offered on each repository row.
type RepositoryAction int

const (
	ActionOpen RepositoryAction = iota
	ActionCopy
)

func (a RepositoryAction) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionCopy:
		return "copy"
	default:
		return fmt.Sprintf("RepositoryAction(%d)", int(a))
	}
}

// Apply runs the action against repo.
func (a RepositoryAction) Apply(env *Environment, repo lookup.Repository) (ActionResult, error) {
	result := ActionResult{Action: a, Repository: repo}

	switch a {
	case ActionOpen:
		if env.Browser == nil {
			return result, fmt.Errorf("no browser available to open %s", repo.HTMLURL)
		}
		if err := view.Open(env.Browser, repo); err != nil {
			return result, err
		}
	case ActionCopy:
		if env.Clipboard == nil {
			return result, fmt.Errorf("no clipboard available")
		}
		n, err := view.CopyCloneURL(env.Clipboard, repo)
		if err != nil {
			return result, err
		}
		result.Notification = &n
	default:
		return result, fmt.Errorf("unknown action %v", a)
	}

	return result, nil
}

// CloneCommand returns the git(1) command that clones repo.
func CloneCommand(repo lookup.Repository) string {
	return "git clone " + repo.CloneURL
}

// chooseRepository asks on the terminal which repository to use.
func chooseRepository(repos []lookup.Repository) (string, error) {
	options := make([]huh.Option[string], 0, len(repos))
	for _, r := range repos {
		label := r.Name
		if r.Language != "" {
			label += " (" + r.Language + ")"
		}
		options = append(options, huh.NewOption(label, r.Name))
	}

	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Repository").
				Description("Choose the repository whose clone URL to copy.").
				Options(options...).
				Value(&name),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("repository selection failed: %w", err)
	}
	return name, nil
}
