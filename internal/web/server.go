package web

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"pdfchat/internal/config"
	"pdfchat/internal/session"
)

const (
	sessionCookie = "pdfchat_session"
	uploadField   = "documents"
	questionField = "question"
)

var appStart = time.Now()

type Server struct {
	e     *echo.Echo
	cfg   config.ServerConfig
	ctrl  *session.Controller
	store *session.Store
}

func NewServer(cfg config.ServerConfig, ctrl *session.Controller, store *session.Store) (*Server, error) {
	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	if cfg.MaxUpload != "" {
		e.Use(middleware.BodyLimit(cfg.MaxUpload))
	}

	s := &Server{e: e, cfg: cfg, ctrl: ctrl, store: store}
	e.GET("/", s.Index)
	e.POST("/process", s.Process)
	e.POST("/ask", s.Ask)
	e.POST("/reset", s.Reset)
	e.GET("/chunks", s.Chunks)
	e.GET("/healthz", s.Health)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start() error {
	log.Info().Str("address", s.cfg.Address).Msg("Starting web server")
	err := s.e.Start(s.cfg.Address)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
