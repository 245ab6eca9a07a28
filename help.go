package main

import (
	"fmt"
)

const programName = "ghlookup"

// Description returns the text shown above the generated flag help.
func Description(programName string) string {
	return fmt.Sprintf(`Look up a GitHub user's profile and public repositories.

Each lookup fetches the profile and the first page of repositories
concurrently. A failed request leaves its part of the page empty.

Handles may be given as:
  - a login (e.g. "octocat" or "@octocat")
  - a login and repository (e.g. "octocat/linguist")
  - a GitHub URL (e.g. "https://github.com/octocat/linguist")

Settings are read from ~/.config/ghlookup/config.yaml (or --config),
then from the environment (a .env file is loaded first), then from
flags. GITHUB_TOKEN is sent as "Authorization: token X" when set.

Examples:
  # Browse the default user interactively.
  %[1]s

  # Print octocat's repositories as a table.
  %[1]s show octocat

  # Print only repository names, for scripts.
  %[1]s show octocat -o quiet

  # Open a repository page in the browser.
  %[1]s open octocat linguist

  # Copy a clone URL, choosing the repository from a list.
  %[1]s copy octocat

  # Serve the lookup page on port 8080.
  %[1]s serve --listen :8080`, programName)
}
