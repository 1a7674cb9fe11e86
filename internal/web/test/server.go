package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thomiceli/gistsearch/internal/config"
	"github.com/thomiceli/gistsearch/internal/github"
	"github.com/thomiceli/gistsearch/internal/github/githubtest"
	"github.com/thomiceli/gistsearch/internal/search"
	"github.com/thomiceli/gistsearch/internal/web/server"
)

const gistBaseURL = "https://gist.example"

type testServer struct {
	server   *server.Server
	upstream *githubtest.Server
}

func setup(t *testing.T) *testServer {
	return setupWithTimeout(t, 5*time.Second)
}

// setupWithTimeout builds a server whose upstream requests give up after timeout.
func setupWithTimeout(t *testing.T, timeout time.Duration) *testServer {
	t.Setenv("CONFIG", "")
	err := config.InitConfig("", io.Discard)
	require.NoError(t, err, "Could not init config")

	config.C.LogLevel = "error"
	config.InitLog()

	upstream := githubtest.NewServer()
	t.Cleanup(upstream.Close)

	client, err := github.NewClient(github.Options{
		BaseURL:  upstream.APIURL(),
		Timeout:  timeout,
		PerPage:  2,
		MaxPages: 5,
	})
	require.NoError(t, err, "Could not create github client")

	searcher := search.NewSearcher(client, client, search.MatchOptions{GistBaseURL: gistBaseURL, Workers: 2})

	return &testServer{
		server:   server.NewServer(searcher),
		upstream: upstream,
	}
}

func (s *testServer) request(t *testing.T, method, uri, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, "http://localhost:8000"+uri, bodyReader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()

	s.server.ServeHTTP(w, req)
	return w
}

// search posts a search request and decodes the response, which must always be a 200.
func (s *testServer) search(t *testing.T, username, pattern any) map[string]any {
	t.Helper()

	body, err := json.Marshal(map[string]any{"username": username, "pattern": pattern})
	require.NoError(t, err)

	return s.searchRaw(t, "application/json", string(body))
}

func (s *testServer) searchRaw(t *testing.T, contentType, body string) map[string]any {
	t.Helper()

	w := s.request(t, http.MethodPost, "/api/v1/search", contentType, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}
