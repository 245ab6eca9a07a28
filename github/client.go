package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v77/github"
	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/lookup"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// DefaultPerPage matches the API's own page size, so a single request
// returns what an unparameterised call would.
const DefaultPerPage = 30

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	PerPage    int
	UserAgent  string
	HTTPClient *http.Client
	Logger     *log.Entry
}

// Client fetches profiles and repositories from the GitHub REST API.
type Client struct {
	api     *gh.Client
	perPage int
	log     *log.Entry
}

var _ lookup.Source = (*Client)(nil)

// NewClient returns a Client for opts.BaseURL, or the public API when
// it is empty.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Token != "" {
		httpClient = withToken(httpClient, opts.Token)
	}

	api := gh.NewClient(httpClient)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	api.BaseURL = u

	if opts.UserAgent != "" {
		api.UserAgent = opts.UserAgent
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	entry := opts.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}

	return &Client{
		api:     api,
		perPage: perPage,
		log:     entry,
	}, nil
}

// Profile fetches /users/{handle}.
func (c *Client) Profile(ctx context.Context, handle string) (*lookup.Profile, error) {
	user, resp, err := c.getUser(ctx, handle)
	c.logRate(handle, "profile", resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %q: %w", handle, err)
	}

	return convertProfile(user), nil
}

// Repositories fetches the first page of /users/{handle}/repos.
func (c *Client) Repositories(ctx context.Context, handle string) ([]lookup.Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: c.perPage},
	}

	repos, resp, err := c.api.Repositories.ListByUser(ctx, url.PathEscape(handle), opts)
	c.logRate(handle, "repositories", resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories for %q: %w", handle, err)
	}

	return convertRepositories(repos), nil
}

// getUser sends GET users/{handle} for every handle. Users.Get turns an
// empty handle into a request for the authenticated user.
func (c *Client) getUser(ctx context.Context, handle string) (*gh.User, *gh.Response, error) {
	if handle != "" {
		return c.api.Users.Get(ctx, url.PathEscape(handle))
	}

	req, err := c.api.NewRequest(http.MethodGet, "users/", nil)
	if err != nil {
		return nil, nil, err
	}
	user := new(gh.User)
	resp, err := c.api.Do(ctx, req, user)
	if err != nil {
		return nil, resp, err
	}
	return user, resp, nil
}

func (c *Client) logRate(handle, slice string, resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	entry := c.log.WithFields(log.Fields{
		"handle":    handle,
		"slice":     slice,
		"status":    resp.StatusCode,
		"remaining": resp.Rate.Remaining,
	})
	if resp.Rate.Limit > 0 && resp.Rate.Remaining == 0 {
		entry.WithField("reset", resp.Rate.Reset.Time).Warn("github rate limit exhausted")
		return
	}
	entry.Debug("github response")
}

// StatusCode returns the HTTP status carried by err, or 0 when the
// failure never reached a response.
func StatusCode(err error) int {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
