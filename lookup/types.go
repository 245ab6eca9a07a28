package lookup

import (
	"context"
	"slices"
)

// DefaultHandle is the account looked up when nothing else is configured.
const DefaultHandle = "all4x"

// Profile represents a minimal view of a GitHub user for display.
type Profile struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// Owner identifies the account a repository belongs to.
type Owner struct {
	Login string `json:"login"`
}

// Repository represents a minimal view of a GitHub repository for
// listing, opening and cloning.
type Repository struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	Owner    Owner  `json:"owner"`
}

// Source fetches the two slices of data for a handle. Implementations
// must not retry and must report any non-success outcome as an error.
type Source interface {
	Profile(ctx context.Context, handle string) (*Profile, error)
	Repositories(ctx context.Context, handle string) ([]Repository, error)
}

// Status tracks where a single slice of state is in its fetch cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSettled
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSettled:
		return "settled"
	default:
		return "idle"
	}
}

// State is an immutable snapshot of the controller.
type State struct {
	Handle             string
	Cycle              uint64
	Profile            *Profile
	Repositories       []Repository
	ProfileStatus      Status
	RepositoriesStatus Status
}

// Settled reports whether both slices have reached an outcome for the
// current cycle.
func (s State) Settled() bool {
	return s.ProfileStatus == StatusSettled && s.RepositoriesStatus == StatusSettled
}

// Loading reports whether either slice is still waiting on a response.
func (s State) Loading() bool {
	return s.ProfileStatus == StatusLoading || s.RepositoriesStatus == StatusLoading
}

// FindRepository returns the repository with the given name.
func (s State) FindRepository(name string) (Repository, bool) {
	i := slices.IndexFunc(s.Repositories, func(r Repository) bool {
		return r.Name == name
	})
	if i < 0 {
		return Repository{}, false
	}
	return s.Repositories[i], true
}

func (s State) clone() State {
	c := s
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	c.Repositories = slices.Clone(s.Repositories)
	if c.Repositories == nil {
		c.Repositories = []Repository{}
	}
	return c
}
