package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dga_gateway/internal/handlers"
	"dga_gateway/internal/transport/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Port         string
	APIPrefix    string
	AdminKeyHash string
	Metrics      http.Handler // served at /metrics when set
}

type Server struct {
	httpServer *http.Server
}

func NewServer(opts Options, h *handlers.Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", opts.Port),
			Handler:      NewRouter(opts, h),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewRouter mounts the API at the root and again under opts.APIPrefix.
func NewRouter(opts Options, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Mount("/", apiRoutes(opts, h))
	if opts.APIPrefix != "" && opts.APIPrefix != "/" {
		r.Mount(opts.APIPrefix, apiRoutes(opts, h))
	}
	return r
}

func apiRoutes(opts Options, h *handlers.Handlers) chi.Router {
	r := chi.NewRouter()
	if h != nil {
		r.Get("/health", h.Health)
		r.Get("/validate", h.Validate)
		r.Post("/login", h.Login)
		r.Post("/notification", h.Notification)
		r.Get("/env-config", h.EnvConfig)

		r.Group(func(r chi.Router) {
			r.Use(auth.AdminKeyMiddleware(opts.AdminKeyHash))
			r.Post("/export", h.ExportCitizens)
		})
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
