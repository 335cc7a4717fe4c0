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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	return New(http.NotFoundHandler(), 9000, time.Second, time.Second, time.Second, testLogger())
}

func TestServer_Addr(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	if got := srv.Addr(); got != ":9000" {
		t.Errorf("Addr() = %q, want %q", got, ":9000")
	}
}

func TestServer_ShutdownHooksRunInReverseOrder(t *testing.T) {
	t.Parallel()

	srv := newTestServer()

	var order []string
	srv.OnShutdown("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		order = append(order, "redis")
		return nil
	})

	// Shutting down a server that never started stops the HTTP phase
	// immediately and runs the component phase.
	if err := srv.gracefulShutdown(); err != nil {
		t.Fatalf("gracefulShutdown failed: %v", err)
	}

	// Registered first closes last
	want := []string{"redis", "postgres"}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestServer_ShutdownHookErrorReported(t *testing.T) {
	t.Parallel()

	srv := newTestServer()

	hookErr := errors.New("close failed")
	var laterRan bool
	srv.OnShutdown("postgres", func(context.Context) error {
		laterRan = true
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return hookErr
	})

	err := srv.gracefulShutdown()
	if !errors.Is(err, hookErr) {
		t.Errorf("gracefulShutdown error = %v, want %v", err, hookErr)
	}

	// A failing hook does not stop the remaining ones
	if !laterRan {
		t.Error("hooks after a failure should still run")
	}
}
