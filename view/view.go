// Package view holds presentation helpers shared by the terminal UI,
// the one-shot commands and the web page.
package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"

	"github.com/frobware/ghlookup/lookup"
)

// EmptyMessage is shown whenever the repository list is empty. A
// failed lookup and an account without repositories look the same.
const EmptyMessage = "This user has no repositories."

// CopiedTitle heads the notification shown after a clone URL is copied.
const CopiedTitle = "Copied to clipboard!"

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Browser opens URLs.
type Browser interface {
	Browse(url string) error
}

// SystemClipboard writes to the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Notification is a transient confirmation shown after an action.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n Notification) String() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + " " + n.Description
}

// AvatarURL returns the image address for login.
func AvatarURL(login string) string {
	return "https://github.com/" + login + ".png"
}

// FallbackLabel returns the first two characters of login, upper-cased,
// for use when the avatar cannot be shown.
func FallbackLabel(login string) string {
	if utf8.RuneCountInString(login) > 2 {
		login = string([]rune(login)[:2])
	}
	return strings.ToUpper(login)
}

// CopyCloneURL places the repository clone URL on the clipboard.
func CopyCloneURL(cb Clipboard, repo lookup.Repository) (Notification, error) {
	if err := cb.WriteAll(repo.CloneURL); err != nil {
		return Notification{}, fmt.Errorf("failed to copy clone URL: %w", err)
	}
	return Notification{
		Title:       CopiedTitle,
		Description: repo.CloneURL,
	}, nil
}

// Open shows the repository page in a browser.
func Open(b Browser, repo lookup.Repository) error {
	if repo.HTMLURL == "" {
		return fmt.Errorf("repository %q has no URL", repo.Name)
	}
	if err := b.Browse(repo.HTMLURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", repo.HTMLURL, err)
	}
	return nil
}

// Page is the flattened view of a controller state that every
// presentation layer renders.
type Page struct {
	Handle        string              `json:"handle"`
	Loading       bool                `json:"loading"`
	Profile       *lookup.Profile     `json:"profile"`
	AvatarURL     string              `json:"avatar_url,omitempty"`
	FallbackLabel string              `json:"fallback_label,omitempty"`
	Repositories  []lookup.Repository `json:"repositories"`
	EmptyMessage  string              `json:"empty_message,omitempty"`
}

// NewPage derives a Page from s.
func NewPage(s lookup.State) Page {
	p := Page{
		Handle:       s.Handle,
		Loading:      s.Loading(),
		Profile:      s.Profile,
		Repositories: s.Repositories,
	}
	if p.Repositories == nil {
		p.Repositories = []lookup.Repository{}
	}
	if s.Profile != nil {
		p.AvatarURL = AvatarURL(s.Profile.Login)
		p.FallbackLabel = FallbackLabel(s.Profile.Login)
	}
	if len(p.Repositories) == 0 {
		p.EmptyMessage = EmptyMessage
	}
	return p
}
