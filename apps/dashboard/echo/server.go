package echodash

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Registry       *resource.Registry
		Service        *resource.Service
		Validator      *resource.Validator
		Sessions       *session.Manager
		Auth           session.Authenticator
		Metrics        *restapi.Metrics
		AssetBaseURL   string
		DisableReqLogs bool
		DisableCSRF    bool
	}

	Server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(opts *Options) (*Server, error) {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	conf := s.opts.Conf

	tmpl, err := newRenderer(s.opts.AssetBaseURL, conf.Debug || conf.TestMode)
	if err != nil {
		return errors.Wrap(err, "loading templates")
	}
	s.app.Renderer = tmpl
	s.app.HideBanner = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if !s.opts.DisableCSRF {
		s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   conf.Server.SecureCookies,
		}))
	}
	s.app.Use(sessionMiddleware(s.opts.Sessions))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.SignalShutdown, s.opts.Registry)
	s.app.Debug = conf.Debug

	s.app.GET("/healthz", s.healthz)
	if s.opts.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.opts.Metrics.Handler()))
	}

	registerAuthRoutes(s.app, s.opts)

	guarded := s.app.Group("", requireSession)
	registerResourceRoutes(guarded, s.opts)
	return nil
}

// Start listens until the server is shut down. Listener errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the process to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// healthz reports the dashboard's own status along with the backend's.
func (s *Server) healthz(ctx echo.Context) error {
	status := echo.Map{"status": "ok"}
	if _, err := s.opts.Service.Health(ctx.Request().Context()); err != nil {
		status["backend"] = errors.Cause(err).Error()
		return ctx.JSON(http.StatusServiceUnavailable, status)
	}
	status["backend"] = "ok"
	return ctx.JSON(http.StatusOK, status)
}
