// Package api serves the relayer's HTTP interface.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/motus-labs/motus-name-service/relayer/metrics"
)

// Server provides HTTP endpoints
type Server struct {
	logger  zerolog.Logger
	relay   RelayService
	metrics *metrics.Metrics
	server  *http.Server
}

// NewServer creates a new Server instance listening on port. m may be nil.
func NewServer(logger zerolog.Logger, port int, relay RelayService, m *metrics.Metrics) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "api").Logger(),
		relay:   relay,
		metrics: m,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("api server is nil")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
	}

	go func() {
		err := s.server.Serve(ln)
		switch err {
		case nil:
			s.logger.Info().Msg("api server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("api server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("api server error")
		}
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("api server listening")
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting up to timeout for
// in-flight requests.
func (s *Server) Stop(timeout time.Duration) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	})
}
