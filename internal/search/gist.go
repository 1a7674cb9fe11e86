package search

import (
	"context"
	"sort"
)

// Gist is the metadata of a single gist as listed by the upstream API.
type Gist struct {
	ID    string
	Owner string
	Files map[string]File
}

type File struct {
	Name   string
	RawURL string
}

// Enumerator lists every gist owned by a user, in upstream order.
type Enumerator interface {
	ListGists(ctx context.Context, username string) ([]Gist, error)
}

// Fetcher retrieves the raw text of a gist file.
type Fetcher interface {
	FetchRaw(ctx context.Context, rawURL string) (string, error)
}

// URL returns the canonical gist URL under baseURL, e.g. https://gist.github.com/user/id.
func (g *Gist) URL(baseURL string) string {
	return baseURL + "/" + g.Owner + "/" + g.ID
}

// sortedFiles returns the gist files ordered by filename.
func (g *Gist) sortedFiles() []File {
	files := make([]File, 0, len(g.Files))
	for name, f := range g.Files {
		if f.Name == "" {
			f.Name = name
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files
}
