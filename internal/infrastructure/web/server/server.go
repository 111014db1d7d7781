package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ticker-cache-service/internal/infrastructure/logging"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance
func NewServer(handler http.Handler, port int) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		port: port,
	}
}

// Start blocks serving HTTP; it returns nil after a graceful Stop
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
		"endpoints": []string{
			fmt.Sprintf("GET  http://localhost:%d/health", s.port),
			fmt.Sprintf("GET  http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/assets?ids=BTC,ETH", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/assets/BTC", s.port),
			fmt.Sprintf("POST http://localhost:%d/api/v1/refresh", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/status", s.port),
			fmt.Sprintf("WS   ws://localhost:%d/api/v1/stream", s.port),
			fmt.Sprintf("GET  http://localhost:%d/swagger/", s.port),
		},
	})

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
