package github

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thomiceli/gistsearch/internal/github/githubtest"
	"github.com/thomiceli/gistsearch/internal/search"
)

func newTestClient(t *testing.T, s *githubtest.Server, maxPages int) *Client {
	t.Helper()
	return newTestClientWithTimeout(t, s, maxPages, 5*time.Second)
}

func newTestClientWithTimeout(t *testing.T, s *githubtest.Server, maxPages int, timeout time.Duration) *Client {
	t.Helper()

	c, err := NewClient(Options{BaseURL: s.APIURL(), Timeout: timeout, PerPage: 2, MaxPages: maxPages})
	require.NoError(t, err)
	return c
}

func TestListGistsPagination(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas",
		[]githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "a"}}, {ID: "b2", Files: map[string]string{"b.txt": "b"}}},
		[]githubtest.Gist{{ID: "c3", Files: map[string]string{"c.txt": "c"}}, {ID: "d4", Files: map[string]string{"d.txt": "d"}}},
		[]githubtest.Gist{{ID: "e5", Files: map[string]string{"e.txt": "e", "f.txt": "f"}}},
	)

	c := newTestClient(t, s, 10)
	gists, err := c.ListGists(context.Background(), "thomas")
	require.NoError(t, err)

	ids := make([]string, len(gists))
	for i, g := range gists {
		ids[i] = g.ID
		require.Equal(t, "thomas", g.Owner)
	}
	require.Equal(t, []string{"a1", "b2", "c3", "d4", "e5"}, ids)
	require.Equal(t, 3, s.Requests("/users/thomas/gists"))

	require.Len(t, gists[4].Files, 2)
	require.Equal(t, "f.txt", gists[4].Files["f.txt"].Name)
	require.Equal(t, s.URL+"/raw/thomas/e5/f.txt", gists[4].Files["f.txt"].RawURL)
}

func TestListGistsSinglePage(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "a"}}})

	gists, err := newTestClient(t, s, 10).ListGists(context.Background(), "thomas")
	require.NoError(t, err)
	require.Len(t, gists, 1)
	require.Equal(t, 1, s.Requests("/users/thomas/gists"))
}

func TestListGistsNoGists(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("empty")

	gists, err := newTestClient(t, s, 10).ListGists(context.Background(), "empty")
	require.NoError(t, err)
	require.Empty(t, gists)
}

func TestListGistsNotFound(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	_, err := newTestClient(t, s, 10).ListGists(context.Background(), "ghost")

	var notFound *search.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Not Found", notFound.Message)
	require.Equal(t, "ghost", notFound.Username)
}

func TestListGistsUpstreamError(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas")
	s.FailListing("thomas", http.StatusBadGateway)

	_, err := newTestClient(t, s, 10).ListGists(context.Background(), "thomas")

	var upstream *search.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	require.Equal(t, "Bad Gateway", upstream.Message)
}

func TestListGistsTooManyPages(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddLoopingUser("loop")

	_, err := newTestClient(t, s, 5).ListGists(context.Background(), "loop")
	require.ErrorIs(t, err, search.ErrTooManyPages)
	require.Equal(t, 5, s.Requests("/users/loop/gists"))
}

func TestListGistsTransportError(t *testing.T) {
	s := githubtest.NewServer()
	s.AddUser("thomas")
	c := newTestClient(t, s, 10)
	s.Close()

	_, err := c.ListGists(context.Background(), "thomas")

	var upstream *search.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Zero(t, upstream.StatusCode)
	require.Empty(t, upstream.Message)
}

func TestFetchRaw(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "line1\nTerbiumLabsChallenge_7\n"}}})
	s.BreakRaw("thomas", "a1", "broken.txt")

	c := newTestClient(t, s, 10)

	body, err := c.FetchRaw(context.Background(), s.URL+"/raw/thomas/a1/a.txt")
	require.NoError(t, err)
	require.Equal(t, "line1\nTerbiumLabsChallenge_7\n", body)

	_, err = c.FetchRaw(context.Background(), s.URL+"/raw/thomas/a1/broken.txt")
	require.Error(t, err)

	_, err = c.FetchRaw(context.Background(), s.URL+"/raw/thomas/a1/missing.txt")
	require.Error(t, err)
}

func TestFetchRawStatusError(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "a"}}})
	s.BreakRaw("thomas", "a1", "a.txt")

	rawURL := s.URL + "/raw/thomas/a1/a.txt"
	_, err := newTestClient(t, s, 10).FetchRaw(context.Background(), rawURL)

	var statusErr *RawStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Equal(t, rawURL, statusErr.URL)
}

func TestFetchRawAfterRateLimitExhausted(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{
		{ID: "a1", Files: map[string]string{"a.txt": "hay"}},
		{ID: "b2", Files: map[string]string{"b.txt": "hay needle hay"}},
	})
	s.ExhaustRateLimit()

	c := newTestClient(t, s, 10)

	gists, err := c.ListGists(context.Background(), "thomas")
	require.NoError(t, err)
	require.Len(t, gists, 2)

	// the API quota is spent but raw files are not counted against it
	body, err := c.FetchRaw(context.Background(), s.URL+"/raw/thomas/b2/b.txt")
	require.NoError(t, err)
	require.Equal(t, "hay needle hay", body)

	// a fresh client lists once, then fetches with the quota spent
	fresh := newTestClient(t, s, 10)
	searcher := search.NewSearcher(fresh, fresh, search.MatchOptions{GistBaseURL: "https://gist.example", Workers: 2})
	res := searcher.Search(context.Background(), "thomas", "needle")
	require.Equal(t, search.Success("thomas", "needle", []string{"https://gist.example/thomas/b2"}), res)
	require.Equal(t, 3, s.Requests("/raw/thomas/"))
}

func TestListGistsTimeout(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "a"}}})
	s.SlowListing(2 * time.Second)

	c := newTestClientWithTimeout(t, s, 10, 100*time.Millisecond)

	start := time.Now()
	_, err := c.ListGists(context.Background(), "thomas")
	require.Less(t, time.Since(start), 2*time.Second)

	var upstream *search.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Zero(t, upstream.StatusCode)
	require.Empty(t, upstream.Message)
	require.Equal(t, search.Failure(search.MsgUnexpected), search.Classify(err))
}

func TestFetchRawTimeout(t *testing.T) {
	s := githubtest.NewServer()
	defer s.Close()

	s.AddUser("thomas", []githubtest.Gist{{ID: "a1", Files: map[string]string{"a.txt": "needle"}}})
	s.SlowRaw(2 * time.Second)

	c := newTestClientWithTimeout(t, s, 10, 100*time.Millisecond)

	gists, err := c.ListGists(context.Background(), "thomas")
	require.NoError(t, err)

	start := time.Now()
	_, err = search.FindMatches(context.Background(), c, gists, regexp.MustCompile("needle"), search.MatchOptions{Workers: 1})
	require.Less(t, time.Since(start), 2*time.Second)

	var fetchErr *search.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, s.URL+"/raw/thomas/a1/a.txt", fetchErr.URL)
	require.Equal(t, search.Failure(search.MsgUnexpected), search.Classify(err))
}
