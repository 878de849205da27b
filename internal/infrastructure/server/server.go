// Package server exposes the profile cache over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/domain/entity"
	"github.com/bnema/profilecache/internal/logging"
)

const (
	readHeaderTimeout      = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ProfileService is the slice of the profile use case the API needs.
type ProfileService interface {
	Execute(ctx context.Context, userID string) (*entity.Profile, error)
	Refresh(ctx context.Context, userID string) (*entity.Profile, error)
	Invalidate(userID string)
	Stats() port.CacheStats
}

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Gatherer backs GET /metrics. The route is not registered when nil.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// Server serves profiles through the cache.
type Server struct {
	profiles        ProfileService
	router          *mux.Router
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// New builds the router and the underlying http.Server.
func New(profiles ProfileService, opts Options) *Server {
	s := &Server{
		profiles:        profiles,
		router:          mux.NewRouter(),
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	s.router.Use(s.withLogger)
	s.router.HandleFunc("/profiles/{id}", s.handleGetProfile).Methods(http.MethodGet)
	s.router.HandleFunc("/profiles/{id}", s.handleInvalidate).Methods(http.MethodDelete)
	s.router.HandleFunc("/profiles/{id}/refresh", s.handleRefresh).Methods(http.MethodPost)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		ctx := logging.WithContext(r.Context(), log)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Debug().Int("status", rec.status).Dur("elapsed", time.Since(start)).Msg("request served")
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Refresh(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := entity.ValidateUserID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.profiles.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Warn().Err(err).Int("status", status).Msg("profile request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
