package search

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/metrics"
)

// Searcher lists the gists of a user then looks for a pattern in every file.
type Searcher struct {
	enumerator Enumerator
	fetcher    Fetcher
	opts       MatchOptions
}

func NewSearcher(enumerator Enumerator, fetcher Fetcher, opts MatchOptions) *Searcher {
	return &Searcher{enumerator: enumerator, fetcher: fetcher, opts: opts}
}

// Search never fails: errors are turned into an error Result.
func (s *Searcher) Search(ctx context.Context, username, pattern string) Result {
	start := time.Now()

	matches, err := s.search(ctx, username, pattern)

	var res Result
	if err != nil {
		log.Info().Err(err).Str("username", username).Str("pattern", pattern).Msg("Search failed")
		res = Classify(err)
	} else {
		res = Success(username, pattern, matches)
	}

	metrics.ObserveSearch(res.Status, time.Since(start).Seconds())
	return res
}

func (s *Searcher) search(ctx context.Context, username, pattern string) ([]string, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	compiled, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	gists, err := s.enumerator.ListGists(ctx, username)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("username", username).Int("gists", len(gists)).Msg("Listed gists")

	return FindMatches(ctx, s.fetcher, gists, compiled, s.opts)
}

func CompilePattern(pattern string) (*regexp.Regexp, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, ErrInvalidPattern
	}
	return compiled, nil
}
