package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/config"
	"github.com/thomiceli/gistsearch/internal/search"
	"github.com/thomiceli/gistsearch/internal/validator"
)

type Server struct {
	echo *echo.Echo

	searcher *search.Searcher
}

func NewServer(searcher *search.Searcher) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.NewValidator()

	s := &Server{echo: e, searcher: searcher}

	s.useCustomContext()

	s.registerMiddlewares()
	s.echo.HTTPErrorHandler = s.errorHandler

	s.registerRoutes()

	return s
}

func (s *Server) Start() {
	addr := config.HttpAddr()

	log.Info().Msg("Starting HTTP server on http://" + addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func (s *Server) Stop() {
	if err := s.echo.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to stop HTTP server")
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
