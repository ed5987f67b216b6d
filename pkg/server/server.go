package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"panelsmith/pkg/creative"
	"panelsmith/pkg/hybrid"
	"panelsmith/pkg/inference"
	"panelsmith/pkg/studio"
	"panelsmith/pkg/synth"
	"panelsmith/pkg/utils"
)

type Server struct {
	Echo   *echo.Echo
	Studio *studio.Studio
	// Ctx ends long-running streams when the server shuts down.
	Ctx context.Context
}

func NewServer(ctx context.Context, st *studio.Studio) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("32M"))

	s := &Server{
		Echo:   e,
		Studio: st,
		Ctx:    ctx,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.GET("/providers", s.handleGetProviders)       // credential presence and fallback plan
	api.PUT("/credentials", s.handlePutCredentials)   // partial update, empty value clears
	api.POST("/validate", s.handlePostValidate)       // check a candidate key without storing it
	api.POST("/enhance", s.handlePostEnhance)         // idea -> detailed scene prompt
	api.POST("/panel", s.handlePostPanel)             // scene -> caption + image prompt
	api.POST("/script", s.handlePostScript)           // story -> ordered panels
	api.POST("/image", s.handlePostImage)             // image prompt + references -> image
	api.POST("/story", s.handlePostStory)             // story -> script -> images, streamed over SSE
	api.POST("/characters/analyze", s.handlePostAnalyze)
	api.POST("/characters/avatar", s.handlePostAvatar)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr, "hybrid", s.Studio.Registry.IsHybridEligible())
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}

// httpError maps generation errors onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, creative.ErrEmptyInput),
		errors.Is(err, synth.ErrEmptyPrompt),
		errors.Is(err, utils.ErrInvalidDataURL):
		status = http.StatusBadRequest
	case errors.Is(err, inference.ErrMissingCredential):
		status = http.StatusPreconditionFailed
	case errors.Is(err, hybrid.ErrAllProvidersExhausted):
		status = http.StatusBadGateway
	case errors.Is(err, inference.ErrSafetyBlocked):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrJSONFormat),
		errors.Is(err, inference.ErrNoImageReturned),
		errors.Is(err, inference.ErrProviderRequestFailed),
		errors.Is(err, inference.ErrEmptyResponse):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}
	return echo.NewHTTPError(status, utils.ErrJSON(err.Error()))
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, utils.ErrJSON(msg))
}
