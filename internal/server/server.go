package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/fr0stylo/relgraph/internal/observability"
	"github.com/fr0stylo/relgraph/internal/renderer"
)

// RouteRegister registers Echo routes.
type RouteRegister interface {
	RegisterRoutes(s *echo.Echo)
}

// Server holds the Echo instance.
type Server struct {
	e *echo.Echo
}

type options struct {
	service  string
	publicFS fs.FS
	cors     bool
}

// Option customizes a Server.
type Option func(*options)

// WithService names the service in traces.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithStatic serves publicFS at the root, so `public/app.js` is reachable
// at `/public/app.js`.
func WithStatic(publicFS fs.FS) Option {
	return func(o *options) {
		o.publicFS = publicFS
	}
}

// WithCORS allows cross-origin GET requests from any origin.
func WithCORS() Option {
	return func(o *options) {
		o.cors = true
	}
}

// New creates a new server instance.
func New(log *slog.Logger, opts ...Option) *Server {
	cfg := options{service: "relgraph"}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := echo.New()

	e.Renderer = &renderer.Renderer{}
	e.HideBanner = true
	e.HidePort = true

	e.Use(slogecho.New(log))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(observability.EchoMiddleware(cfg.service))
	e.Use(observability.EchoSpanEnrichmentMiddleware())
	if cfg.cors {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
		}))
	}

	if cfg.publicFS != nil {
		e.StaticFS("/", cfg.publicFS)
	}

	return &Server{
		e: e,
	}
}

// RegisterRouter attaches a route registrar.
func (s *Server) RegisterRouter(r RouteRegister) {
	r.RegisterRoutes(s.e)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start runs the HTTP server.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Serve runs the server until ctx is done, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
