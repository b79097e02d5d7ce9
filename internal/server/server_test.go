package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func testServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(http.NewServeMux(), 0, time.Second, time.Second, time.Second, logger)
}

func TestShutdownStopsComponentsLIFO(t *testing.T) {
	t.Parallel()

	s := testServer()

	var order []string
	for _, name := range []string{"worker", "scheduler"} {
		name := name
		s.OnShutdown(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := s.shutdown(); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}

	if len(order) != 2 || order[0] != "scheduler" || order[1] != "worker" {
		t.Errorf("stop order = %v, want [scheduler worker]", order)
	}
}

func TestShutdownContinuesPastFailedComponent(t *testing.T) {
	t.Parallel()

	s := testServer()

	stopErr := errors.New("refused to stop")
	var workerStopped bool
	s.OnShutdown("worker", func(ctx context.Context) error {
		workerStopped = true
		return nil
	})
	s.OnShutdown("scheduler", func(ctx context.Context) error {
		return stopErr
	})

	err := s.shutdown()
	if !errors.Is(err, stopErr) {
		t.Fatalf("shutdown() = %v, want wrapped stop error", err)
	}
	if !workerStopped {
		t.Error("a failed component must not block the remaining stops")
	}
}
