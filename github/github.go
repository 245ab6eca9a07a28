package github

import (
	"net/http"

	gh "github.com/google/go-github/v77/github"

	"github.com/frobware/ghlookup/lookup"
)

// tokenTransport attaches "Authorization: token <value>" to every
// request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "token "+t.token)
	return t.base.RoundTrip(r)
}

func withToken(client *http.Client, token string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = &tokenTransport{token: token, base: base}
	return &c
}

func convertProfile(user *gh.User) *lookup.Profile {
	if user == nil {
		return nil
	}
	return &lookup.Profile{
		Login:    user.GetLogin(),
		Name:     user.GetName(),
		Location: user.GetLocation(),
		Bio:      user.GetBio(),
	}
}

func convertRepositories(repos []*gh.Repository) []lookup.Repository {
	result := make([]lookup.Repository, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		result = append(result, lookup.Repository{
			Name:     r.GetName(),
			Language: r.GetLanguage(),
			HTMLURL:  r.GetHTMLURL(),
			CloneURL: r.GetCloneURL(),
			Owner:    lookup.Owner{Login: r.GetOwner().GetLogin()},
		})
	}
	return result
}
