package search

import (
	"context"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type MatchOptions struct {
	// GistBaseURL is the prefix of canonical gist URLs, without trailing slash.
	GistBaseURL string
	// Workers bounds the number of gists being fetched at the same time.
	Workers int
}

// FindMatches returns the canonical URL of every gist having at least one
// file matching pattern, in the order of gists and without duplicates.
// The first failing fetch aborts the whole search.
func FindMatches(ctx context.Context, fetcher Fetcher, gists []Gist, pattern *regexp.Regexp, opts MatchOptions) ([]string, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// each task only writes its own index
	matched := make([]bool, len(gists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range gists {
		gist := &gists[i]
		g.Go(func() error {
			ok, err := matchGist(gctx, fetcher, gist, pattern)
			if err != nil {
				return err
			}
			matched[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	matches := make([]string, 0)
	for i, ok := range matched {
		if !ok {
			continue
		}
		url := gists[i].URL(opts.GistBaseURL)
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		matches = append(matches, url)
	}

	return matches, nil
}

func matchGist(ctx context.Context, fetcher Fetcher, gist *Gist, pattern *regexp.Regexp) (bool, error) {
	for _, file := range gist.sortedFiles() {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		body, err := fetcher.FetchRaw(ctx, file.RawURL)
		if err != nil {
			return false, &FetchError{URL: file.RawURL, Err: err}
		}

		if pattern.MatchString(body) {
			log.Debug().Str("gist", gist.ID).Str("file", file.Name).
				Str("size", humanize.Bytes(uint64(len(body)))).Msg("Pattern matched")
			return true, nil
		}
	}
	return false, nil
}
