package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/ghlookup/lookup"
)

const octocatProfile = `{
	"login": "octocat",
	"id": 583231,
	"name": "The Octocat",
	"company": "@github",
	"location": "San Francisco",
	"bio": null,
	"public_repos": 8
}`

const octocatRepos = `[
	{"name": "linguist", "language": "Ruby", "html_url": "https://github.com/octocat/linguist", "clone_url": "https://github.com/octocat/linguist.git", "owner": {"login": "octocat"}},
	{"name": "Hello-World", "language": null, "html_url": "https://github.com/octocat/Hello-World", "clone_url": "https://github.com/octocat/Hello-World.git", "owner": {"login": "octocat"}},
	{"name": "boysenberry-repo-1", "language": "Go", "html_url": "https://github.com/octocat/boysenberry-repo-1", "clone_url": "https://github.com/octocat/boysenberry-repo-1.git", "owner": {"login": "octocat"}}
]`

func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := log.New()
	logger.Out = io.Discard

	opts.BaseURL = srv.URL
	opts.Logger = log.NewEntry(logger)

	client, err := NewClient(opts)
	require.NoError(t, err)
	return client
}

func TestClient_Profile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, octocatProfile)
	})

	client := newTestClient(t, mux, Options{})

	profile, err := client.Profile(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, &lookup.Profile{
		Login:    "octocat",
		Name:     "The Octocat",
		Location: "San Francisco",
		Bio:      "",
	}, profile)
}

func TestClient_Repositories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, octocatRepos)
	})

	client := newTestClient(t, mux, Options{})

	repos, err := client.Repositories(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 3)

	names := []string{repos[0].Name, repos[1].Name, repos[2].Name}
	assert.Equal(t, []string{"linguist", "Hello-World", "boysenberry-repo-1"}, names)
	assert.Equal(t, lookup.Repository{
		Name:     "Hello-World",
		Language: "",
		HTMLURL:  "https://github.com/octocat/Hello-World",
		CloneURL: "https://github.com/octocat/Hello-World.git",
		Owner:    lookup.Owner{Login: "octocat"},
	}, repos[1])
}

func TestClient_PerPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[]`)
	})

	client := newTestClient(t, mux, Options{PerPage: 100})

	repos, err := client.Repositories(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.NotNil(t, repos)
}

func TestClient_AuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{name: "token configured", token: "s3cr3t", expect: "token s3cr3t"},
		{name: "no token", token: "", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen atomic.Int32
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen.Add(1)
				assert.Equal(t, tt.expect, r.Header.Get("Authorization"))
				if r.URL.Path == "/users/octocat/repos" {
					fmt.Fprint(w, `[]`)
					return
				}
				fmt.Fprint(w, octocatProfile)
			})

			client := newTestClient(t, handler, Options{Token: tt.token})

			_, err := client.Profile(context.Background(), "octocat")
			require.NoError(t, err)
			_, err = client.Repositories(context.Background(), "octocat")
			require.NoError(t, err)
			assert.Equal(t, int32(2), seen.Load())
		})
	}
}

func TestClient_UserAgent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ghlookup/test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, octocatProfile)
	})

	client := newTestClient(t, handler, Options{UserAgent: "ghlookup/test"})

	_, err := client.Profile(context.Background(), "octocat")
	require.NoError(t, err)
}

func TestClient_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found", "documentation_url": "https://docs.github.com/rest"}`)
	})

	client := newTestClient(t, handler, Options{})

	_, err := client.Profile(context.Background(), "nobody-here")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	repos, err := client.Repositories(context.Background(), "nobody-here")
	require.Error(t, err)
	assert.Nil(t, repos)
	assert.True(t, IsNotFound(err))
}

func TestClient_ErrorStatusWithJSONBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, octocatProfile)
	})

	client := newTestClient(t, handler, Options{})

	profile, err := client.Profile(context.Background(), "octocat")
	require.Error(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestClient_MalformedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "octocat", `)
	})

	client := newTestClient(t, handler, Options{})

	_, err := client.Profile(context.Background(), "octocat")
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_EmptyHandle(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	client := newTestClient(t, handler, Options{})

	_, err := client.Profile(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = client.Repositories(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	assert.Equal(t, []string{"/users/", "/users//repos"}, paths)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(Options{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Profile(context.Background(), "octocat")
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
	assert.False(t, IsNotFound(err))
}

func TestNewClient_BaseURL(t *testing.T) {
	client, err := NewClient(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.api.BaseURL.String())

	client, err = NewClient(Options{BaseURL: "https://ghe.example.com/api/v3"})
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.api.BaseURL.String())

	_, err = NewClient(Options{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("boom")))
	assert.Equal(t, 0, StatusCode(nil))
}

func TestConvertRepositories_SkipsNil(t *testing.T) {
	assert.Empty(t, convertRepositories(nil))
	assert.Nil(t, convertProfile(nil))
}

func TestClient_RateLimitExhaustedIsLogged(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1893456000")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded for 127.0.0.1."}`)
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, hook := test.NewNullLogger()
	client, err := NewClient(Options{BaseURL: srv.URL, Logger: log.NewEntry(logger)})
	require.NoError(t, err)

	_, err = client.Profile(context.Background(), "octocat")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "profile", entry.Data["slice"])
	assert.Equal(t, http.StatusForbidden, entry.Data["status"])
	assert.Contains(t, entry.Data, "reset")
}
