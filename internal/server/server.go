// Package server exposes the file engine over HTTP.
package server

import (
	"context"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/cbout22/repofiles/internal/auth"
	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/pathcheck"
)

// FileService is what the handlers need from the engine.
// *fileops.Engine satisfies it; handler tests substitute a stub.
type FileService interface {
	MoveBatch(ctx context.Context, repo fileops.Repo, branch string, items []fileops.Item, dest string) (*fileops.MoveResult, error)
	DeleteBatch(ctx context.Context, repo fileops.Repo, branch string, items []fileops.Item) (*fileops.DeleteResult, error)
	ListFolders(ctx context.Context, repo fileops.Repo, branch string) ([]string, bool, error)
}

// ServiceFactory builds a FileService bound to one caller's GitHub
// token. Each request gets its own service so tokens never leak
// between callers.
type ServiceFactory func(token string) FileService

// ghnameRE is the safe character set for owner and repository names.
var ghnameRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Server wires the echo router, auth store and engine factory together.
type Server struct {
	echo     *echo.Echo
	store    auth.Store
	services ServiceFactory
	validate *validator.Validate
	log      zerolog.Logger
}

// New creates a Server with its routes and middleware registered.
func New(store auth.Store, services ServiceFactory, log zerolog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		validate: newValidator(),
		log:      log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	api := e.Group("/api", s.requireIdentity)
	api.POST("/move", s.handleMove)
	api.POST("/delete", s.handleDelete)
	api.GET("/folders", s.handleFolders)

	s.echo = e
	return s
}

// newValidator builds the request validator with the two custom rules
// shared by every request shape.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ghname", func(fl validator.FieldLevel) bool {
		return ghnameRE.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		return pathcheck.ValidateRelPath(fl.Field().String()) == nil
	})
	return v
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server. Remote
// mutations already issued by a running batch are not undone; shutdown
// only stops accepting new work.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

// ShutdownTimeout bounds how long Shutdown waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second
