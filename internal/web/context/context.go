package context

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/search"
)

type Context struct {
	echo.Context

	Searcher *search.Searcher
}

func NewContext(c echo.Context, searcher *search.Searcher) *Context {
	return &Context{
		Context:  c,
		Searcher: searcher,
	}
}

func (ctx *Context) ErrorRes(code int, message string, err error) error {
	if code >= 500 {
		var skipLogger = log.With().CallerWithSkipFrameCount(3).Logger()
		skipLogger.Error().Err(err).Msg(message)
	}

	return &echo.HTTPError{Code: code, Message: message, Internal: err}
}

func (ctx *Context) Json(data any) error {
	return ctx.JsonWithCode(200, data)
}

func (ctx *Context) JsonWithCode(code int, data any) error {
	return ctx.JSON(code, data)
}

func (ctx *Context) PlainText(code int, message string) error {
	return ctx.String(code, message)
}

func (ctx *Context) NotFound(message string) error {
	return ctx.ErrorRes(404, message, nil)
}

// SearchResult writes a search result. Search responses are always a 200,
// failures are reported in the body.
func (ctx *Context) SearchResult(res search.Result) error {
	return ctx.Json(res)
}

// SearchError writes the error result matching err.
func (ctx *Context) SearchError(err error) error {
	return ctx.SearchResult(search.Classify(err))
}
