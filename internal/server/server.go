// Package server owns the HTTP lifecycle. Shutdown order matters here:
// the listener drains first so in-flight requests can still publish
// activity events, then the background loops stop in reverse registration
// order, leaving the activity worker alive longest to flush the stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// StopFunc stops one background component within the shutdown deadline.
type StopFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Server wraps http.Server with signal handling and ordered teardown of
// the background loops registered on it.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu         sync.Mutex
	components []component
}

// New creates a Server listening on the given port.
func New(handler http.Handler, port int, readTimeout, writeTimeout, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With("component", "server"),
	}
}

// OnShutdown registers a background component to stop after the listener
// drains. Components stop LIFO: register the activity worker before the
// evaluation scheduler so the scheduler stops first and the worker can
// still drain events an in-progress run produced.
func (s *Server) OnShutdown(name string, stop StopFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = append(s.components, component{name: name, stop: stop})
}

// Run serves until SIGINT or SIGTERM, then performs the ordered shutdown.
// Blocks for the lifetime of the process.
func (s *Server) Run() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case got := <-sig:
		s.logger.Info("shutdown signal", "signal", got.String())
		return s.shutdown()
	}
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	// Drain the listener first; a failed drain must not skip stopping
	// the worker and scheduler.
	s.httpServer.SetKeepAlivesEnabled(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("listener drain failed", "error", err)
	} else {
		s.logger.Info("listener drained")
	}

	s.mu.Lock()
	components := s.components
	s.mu.Unlock()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.stop(ctx); err != nil {
			s.logger.Error("component stop failed", "name", c.name, "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", c.name, err))
			continue
		}
		s.logger.Info("component stopped", "name", c.name)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("shutdown complete")
	return nil
}
