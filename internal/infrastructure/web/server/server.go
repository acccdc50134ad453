package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance from the server section of the config
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		port: cfg.Port,
	}
}

// Start starts the HTTP server and blocks until it stops.
// A graceful Stop is not reported as an error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve acepta conexiones en un listener ya abierto
func (s *Server) Serve(ln net.Listener) error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
		"addr": ln.Addr().String(),
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			fmt.Sprintf("GET  http://localhost:%d/tbtc", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/tbtc/last", s.port),
			fmt.Sprintf("WS   ws://localhost:%d/ws/tbtc", s.port),
			fmt.Sprintf("GET  http://localhost:%d/health", s.port),
			fmt.Sprintf("GET  http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET  http://localhost:%d/metrics", s.port),
			fmt.Sprintf("GET  http://localhost:%d/swagger/", s.port),
		},
	})

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
