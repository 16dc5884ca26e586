package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"dupscore/internal/config"
	"dupscore/internal/logging"
	"dupscore/internal/metrics"
	"dupscore/internal/scorer"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Server exposes a scorer.Service over HTTP.
type Server struct {
	bind           string
	requestTimeout time.Duration
	logger         *slog.Logger
	service        *scorer.Service
	metrics        *metrics.Metrics
	limiter        *rate.Limiter
	router         chi.Router

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New builds the router for svc. A nil metrics value gets a private registry.
func New(cfg *config.Config, svc *scorer.Service, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config is required")
	}
	if svc == nil {
		return nil, errors.New("api: scorer service is required")
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		bind:           strings.TrimSpace(cfg.API.Bind),
		requestTimeout: cfg.RequestTimeout(),
		logger:         logging.NewComponentLogger(logger, "api"),
		service:        svc,
		metrics:        m,
	}
	if cfg.API.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimit), max(cfg.API.RateBurst, 1))
	}
	s.router = s.routes(cfg.API.AllowedOrigins)
	return s, nil
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(requestID)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.With(s.rateLimit).Post("/", s.handleClassify)
	r.Route("/api", func(ar chi.Router) {
		ar.With(s.rateLimit).Post("/classify", s.handleClassify)
		ar.Get("/health", s.handleHealth)
	})
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address and serves until ctx is cancelled or
// the listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener. One group member runs the HTTP
// server; the other waits for ctx or a serve failure and drains in-flight
// requests. A serve error other than a clean close is returned.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if ctx == nil {
		ctx = context.Background()
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	served := make(chan struct{})
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(served)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
			return fmt.Errorf("api serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		select {
		case <-groupCtx.Done():
		case <-served:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// Addr reports the bound listener address, or the configured bind before
// Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}
