package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/config"
	"github.com/thomiceli/gistsearch/internal/search"
	"github.com/thomiceli/gistsearch/internal/web/context"
)

var (
	prometheusMiddleware     echo.MiddlewareFunc
	prometheusMiddlewareOnce sync.Once
)

func (s *Server) useCustomContext() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := context.NewContext(c, s.searcher)
			return next(cc)
		}
	})
}

func (s *Server) registerMiddlewares() {
	s.echo.Pre(middleware.RemoveTrailingSlash())
	s.echo.Pre(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Pre(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI: true, LogStatus: true, LogMethod: true, LogRequestID: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().Str("uri", v.URI).Int("status", v.Status).Str("method", v.Method).
				Str("ip", ctx.RealIP()).Str("request_id", v.RequestID).
				TimeDiff("duration", time.Now(), v.StartTime).
				Msg("HTTP")
			return nil
		},
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.Secure())

	if config.C.MetricsEnabled {
		prometheusMiddlewareOnce.Do(func() {
			prometheusMiddleware = echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
				Subsystem:                 "gistsearch",
				DoNotUseRequestPathFor404: true,
			})
		})
		s.echo.Use(prometheusMiddleware)
	}
}

// errorHandler keeps the search API contract: any failure on /api/ is
// reported as a 200 with an error body.
func (s *Server) errorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	if strings.HasPrefix(ctx.Request().URL.Path, "/api/") {
		log.Info().Err(err).Str("uri", ctx.Request().URL.Path).Msg("API error")
		if err := ctx.JSON(http.StatusOK, search.Classify(err)); err != nil {
			log.Error().Err(err).Send()
		}
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	} else {
		log.Error().Err(err).Send()
	}

	if err := ctx.JSON(code, echo.Map{"message": message}); err != nil {
		log.Error().Err(err).Send()
	}
}

func noCache(next Handler) Handler {
	return func(ctx *context.Context) error {
		ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return next(ctx)
	}
}

func noRouteFound(ctx *context.Context) error {
	return ctx.NotFound("Page not found")
}
