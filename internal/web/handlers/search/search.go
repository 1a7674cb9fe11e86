package search

import (
	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/search"
	"github.com/thomiceli/gistsearch/internal/validator"
	"github.com/thomiceli/gistsearch/internal/web/context"
)

// Request fields are not typed as strings so that a JSON value of any other
// type can be reported instead of failing the whole decoding.
type Request struct {
	Username any `json:"username" validate:"isstring"`
	Pattern  any `json:"pattern" validate:"isstring,regexp"`
}

func Search(ctx *context.Context) error {
	req := new(Request)
	if err := ctx.Bind(req); err != nil {
		log.Info().Err(err).Msg("Cannot bind search request")
		return ctx.SearchError(err)
	}

	if err := ctx.Validate(req); err != nil {
		return ctx.SearchError(validationError(err))
	}

	username, ok := req.Username.(string)
	if !ok {
		return ctx.SearchError(search.ErrInvalidUsername)
	}
	pattern, ok := req.Pattern.(string)
	if !ok {
		return ctx.SearchError(search.ErrInvalidPattern)
	}

	res := ctx.Searcher.Search(ctx.Request().Context(), username, pattern)
	return ctx.SearchResult(res)
}

func validationError(err error) error {
	field, ok := validator.FirstInvalidField(err)
	if !ok {
		return err
	}

	switch field {
	case "Username":
		return search.ErrInvalidUsername
	case "Pattern":
		return search.ErrInvalidPattern
	}
	return err
}
