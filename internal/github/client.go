package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/metrics"
	"github.com/thomiceli/gistsearch/internal/search"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxPages bounds the number of listing pages requested for a single user.
	DefaultMaxPages = 100

	DefaultPerPage = 100
)

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	PerPage  int
	MaxPages int
}

// Client lists gists and downloads raw gist files from the GitHub API.
type Client struct {
	gh       *gh.Client
	timeout  time.Duration
	perPage  int
	maxPages int
}

func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	client := gh.NewClient(&http.Client{Timeout: opts.Timeout})

	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{
		gh:       client,
		timeout:  opts.Timeout,
		perPage:  opts.PerPage,
		maxPages: opts.MaxPages,
	}, nil
}

// ListGists returns every public gist of username, following the pagination
// links of the listing endpoint for at most maxPages pages.
func (c *Client) ListGists(ctx context.Context, username string) ([]search.Gist, error) {
	var gists []search.Gist

	opts := &gh.GistListOptions{
		ListOptions: gh.ListOptions{Page: 1, PerPage: c.perPage},
	}
	user := url.PathEscape(username)

	for page := 1; ; page++ {
		if page > c.maxPages {
			return nil, &search.UpstreamError{Err: search.ErrTooManyPages}
		}

		list, resp, err := c.listPage(ctx, user, opts)
		metrics.ObserveUpstream(metrics.KindList, err)
		if err != nil {
			return nil, c.wrapError(err, username)
		}

		for _, g := range list {
			gists = append(gists, toGist(g))
		}
		log.Debug().Str("username", username).Int("page", opts.Page).Int("count", len(list)).Msg("Fetched gist page")

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return gists, nil
}

func (c *Client) listPage(ctx context.Context, user string, opts *gh.GistListOptions) ([]*gh.Gist, *gh.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.gh.Gists.List(ctx, user, opts)
}

// FetchRaw downloads the plain text body of a gist file. Raw files are not
// served by the REST API, so the request skips go-github and its rate limit tracking.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.fetchRaw(ctx, rawURL)
	metrics.ObserveUpstream(metrics.KindRaw, err)
	if err != nil {
		return "", err
	}

	log.Debug().Str("url", rawURL).Str("size", humanize.Bytes(uint64(len(body)))).Msg("Fetched raw file")
	return body, nil
}

func (c *Client) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", c.gh.UserAgent)

	resp, err := c.gh.Client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RawStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var body strings.Builder
	if _, err := io.Copy(&body, resp.Body); err != nil {
		return "", err
	}
	return body.String(), nil
}

// RawStatusError is returned when a raw file answers with a non-2xx status.
type RawStatusError struct {
	URL        string
	StatusCode int
}

func (e *RawStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// wrapError converts go-github errors to search errors.
func (c *Client) wrapError(err error, username string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &search.UpstreamError{StatusCode: statusCode(rateLimitErr.Response), Message: rateLimitErr.Message, Err: err}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &search.UpstreamError{StatusCode: statusCode(abuseErr.Response), Message: abuseErr.Message, Err: err}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		code := statusCode(ghErr.Response)
		if code == http.StatusNotFound {
			return &search.NotFoundError{Username: username, Message: ghErr.Message}
		}
		return &search.UpstreamError{StatusCode: code, Message: ghErr.Message, Err: err}
	}

	return &search.UpstreamError{Err: err}
}

func statusCode(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func toGist(g *gh.Gist) search.Gist {
	gist := search.Gist{
		ID:    g.GetID(),
		Owner: g.GetOwner().GetLogin(),
		Files: make(map[string]search.File, len(g.Files)),
	}
	for name, f := range g.Files {
		filename := f.GetFilename()
		if filename == "" {
			filename = string(name)
		}
		gist.Files[string(name)] = search.File{Name: filename, RawURL: f.GetRawURL()}
	}
	return gist
}
