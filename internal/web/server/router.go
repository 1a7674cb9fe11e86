package server

import (
	"github.com/labstack/echo/v4"
	"github.com/thomiceli/gistsearch/internal/web/handlers/health"
	"github.com/thomiceli/gistsearch/internal/web/handlers/search"
)

func (s *Server) registerRoutes() {
	r := NewRouter(s.echo.Group(""))

	{
		r.GET("/ping", health.Ping)
		r.GET("/healthcheck", health.Healthcheck)

		api := r.SubGroup("/api/v1")
		{
			api.POST("/search", search.Search, noCache)
		}
	}

	r.Any("/*", noRouteFound)
}

// Router wraps echo.Group to provide custom Handler support
type Router struct {
	*echo.Group
}

func NewRouter(g *echo.Group) *Router {
	return &Router{Group: g}
}

func (r *Router) SubGroup(prefix string) *Router {
	return NewRouter(r.Group.Group(prefix))
}

func (r *Router) GET(path string, h Handler, m ...Middleware) {
	r.Group.GET(path, chain(h, m...).toEchoHandler())
}

func (r *Router) POST(path string, h Handler, m ...Middleware) {
	r.Group.POST(path, chain(h, m...).toEchoHandler())
}

func (r *Router) Any(path string, h Handler, m ...Middleware) {
	r.Group.Any(path, chain(h, m...).toEchoHandler())
}
