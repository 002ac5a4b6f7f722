// Package server implements the debug HTTP surface exposed by
// `suitkaise serve`: /healthz, /metrics, and a live /trace SSE feed of
// dispatcher walk events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ceetaro/suitkaise/internal/logger"
)

// Config configures the debug HTTP server.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Server is the debug HTTP server. One Server owns one TraceHub, which
// every verbose Serialize/Deserialize call in the process can stream
// events into via its dispatcher.TraceSink implementation.
type Server struct {
	httpServer      *http.Server
	hub             *TraceHub
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
}

// New creates a debug HTTP server. The server is created in a stopped
// state; call Start to begin serving requests.
func New(cfg Config) *Server {
	cfg.applyDefaults()

	hub := NewTraceHub()
	router := NewRouter(hub, time.Now())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
		},
		hub:             hub,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Hub returns the TraceHub callers should pass as a dispatcher.TraceSink
// (via suitkaise.Options.Sink) to stream their verbose walks to /trace.
func (s *Server) Hub() *TraceHub {
	return s.hub
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("debug server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("debug server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.httpServer.Shutdown(ctx)
		s.hub.Close()
	})
	return err
}
