// Package githubtest provides an in-process stand-in for the GitHub gists API.
package githubtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Gist is a fixture gist: filename to file content.
type Gist struct {
	ID    string
	Files map[string]string
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	pages     map[string][][]Gist
	looping   map[string]bool
	failing   map[string]int
	brokenRaw map[string]bool
	requests  []string

	rateLimitExhausted bool
	listingDelay       time.Duration
	rawDelay           time.Duration
}

func NewServer() *Server {
	s := &Server{
		pages:     make(map[string][][]Gist),
		looping:   make(map[string]bool),
		failing:   make(map[string]int),
		brokenRaw: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{login}/gists", s.listGists)
	mux.HandleFunc("GET /raw/{login}/{id}/{file}", s.rawFile)
	s.Server = httptest.NewServer(mux)

	return s
}

// APIURL is the base url to give to the GitHub client.
func (s *Server) APIURL() string {
	return s.URL + "/"
}

// AddUser registers a user whose gists are split into the given pages.
func (s *Server) AddUser(login string, pages ...[]Gist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[login] = pages
}

// AddLoopingUser registers a user whose listing always announces a next page.
func (s *Server) AddLoopingUser(login string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[login] = [][]Gist{{}}
	s.looping[login] = true
}

// FailListing makes the listing of login answer with the given status code.
func (s *Server) FailListing(login string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[login] = code
}

// BreakRaw makes the raw file of a gist answer with a 500.
func (s *Server) BreakRaw(login, id, file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brokenRaw[login+"/"+id+"/"+file] = true
}

// ExhaustRateLimit makes the last listing page of every user report an
// empty API quota until an hour from now.
func (s *Server) ExhaustRateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimitExhausted = true
}

// SlowListing delays every listing response by d.
func (s *Server) SlowListing(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listingDelay = d
}

// SlowRaw delays every raw file response by d.
func (s *Server) SlowRaw(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawDelay = d
}

// Requests returns how many requests were received with the given path prefix.
func (s *Server) Requests(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.URL.Path)
}

func (s *Server) listGists(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	login := r.PathValue("login")

	s.mu.Lock()
	pages, ok := s.pages[login]
	looping := s.looping[login]
	failCode := s.failing[login]
	exhausted := s.rateLimitExhausted
	delay := s.listingDelay
	s.mu.Unlock()

	if !wait(r, delay) {
		return
	}

	if failCode != 0 {
		writeJSON(w, failCode, map[string]string{"message": http.StatusText(failCode)})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message":           "Not Found",
			"documentation_url": "https://docs.github.com/rest/gists/gists#list-gists-for-a-user",
		})
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	var current []Gist
	if page <= len(pages) {
		current = pages[page-1]
	}
	if looping || page < len(pages) {
		next := fmt.Sprintf("%s/users/%s/gists?page=%d", s.URL, login, page+1)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	} else if exhausted {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Used", "60")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.Header().Set("X-RateLimit-Resource", "core")
	}

	out := make([]map[string]any, 0, len(current))
	for _, g := range current {
		files := make(map[string]any, len(g.Files))
		for name := range g.Files {
			files[name] = map[string]any{
				"filename": name,
				"raw_url":  fmt.Sprintf("%s/raw/%s/%s/%s", s.URL, login, g.ID, name),
			}
		}
		out = append(out, map[string]any{
			"id":    g.ID,
			"owner": map[string]any{"login": login},
			"files": files,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) rawFile(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	login, id, file := r.PathValue("login"), r.PathValue("id"), r.PathValue("file")

	s.mu.Lock()
	delay := s.rawDelay
	s.mu.Unlock()

	if !wait(r, delay) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.brokenRaw[login+"/"+id+"/"+file] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	for _, page := range s.pages[login] {
		for _, g := range page {
			if g.ID != id {
				continue
			}
			if content, ok := g.Files[file]; ok {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = w.Write([]byte(content))
				return
			}
		}
	}
	http.NotFound(w, r)
}

// wait sleeps for d unless the client goes away first.
func wait(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
