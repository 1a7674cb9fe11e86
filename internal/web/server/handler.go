package server

import (
	"github.com/labstack/echo/v4"
	"github.com/thomiceli/gistsearch/internal/web/context"
)

type Handler func(ctx *context.Context) error
type Middleware func(next Handler) Handler

func (h Handler) toEchoHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if gsc, ok := c.(*context.Context); ok {
			return h(gsc)
		}
		return echo.NewHTTPError(500, "invalid request context")
	}
}

func chain(h Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
