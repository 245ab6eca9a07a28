package main

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// HandleRef is a handle, optionally narrowed to one of its
// repositories.
type HandleRef struct {
	Handle     string
	Repository string
}

// profilePathRegex matches "/owner" and "/owner/repo", with an optional
// ".git" suffix or trailing slash.
var profilePathRegex = regexp.MustCompile(`^/([^/]+)(?:/([^/]+?)(?:\.git)?)?/?$`)

// ParseHandleArgument accepts "name", "@name", "name/repo" or a
// github.com profile or repository URL.
func ParseHandleArgument(arg string) (HandleRef, error) {
	arg = strings.TrimSpace(arg)

	if strings.Contains(arg, "://") {
		return parseHandleURL(arg)
	}

	arg = strings.TrimPrefix(arg, "@")
	handle, repo, found := strings.Cut(arg, "/")
	if found && (handle == "" || repo == "" || strings.Contains(repo, "/")) {
		return HandleRef{}, fmt.Errorf("invalid handle %q, expected name or name/repo", arg)
	}

	return HandleRef{Handle: handle, Repository: strings.TrimSuffix(repo, ".git")}, nil
}

func parseHandleURL(arg string) (HandleRef, error) {
	u, err := url.Parse(arg)
	if err != nil {
		return HandleRef{}, fmt.Errorf("invalid handle URL %q", arg)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host != "github.com" {
		return HandleRef{}, fmt.Errorf("invalid handle URL %q: not a github.com address", arg)
	}

	matches := profilePathRegex.FindStringSubmatch(u.Path)
	if len(matches) != 3 {
		return HandleRef{}, fmt.Errorf("invalid GitHub profile URL %q", arg)
	}

	return HandleRef{Handle: matches[1], Repository: matches[2]}, nil
}
