// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// fakeListener blocks in ListenAndServe until Shutdown, unless listenErr
// or exitEarly make it return on its own.
type fakeListener struct {
	listenErr   error
	exitEarly   bool
	shutdownErr error

	started   chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
	listens   atomic.Int32
	shutdowns atomic.Int32
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		started: make(chan struct{}, 8),
		stopped: make(chan struct{}),
	}
}

func (f *fakeListener) ListenAndServe() error {
	f.listens.Add(1)
	f.started <- struct{}{}
	switch {
	case f.listenErr != nil:
		return f.listenErr
	case f.exitEarly:
		return http.ErrServerClosed
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeListener) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stopped) })
	return f.shutdownErr
}

func (f *fakeListener) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("listener never started")
	}
}

// serveAsync runs svc.Serve and returns its result channel and a cancel.
func serveAsync(svc *HTTPServerService) (<-chan error, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	return done, cancel
}

func waitServe(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"zero uses default", 0, 10 * time.Second},
		{"negative uses default", -time.Second, 10 * time.Second},
		{"explicit", 3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewHTTPServerService(newFakeListener(), tt.timeout, zerolog.Nop())
			if svc.shutdownTimeout != tt.want {
				t.Errorf("shutdownTimeout = %v, want %v", svc.shutdownTimeout, tt.want)
			}
			if svc.String() != "http-server" {
				t.Errorf("String() = %q", svc.String())
			}
		})
	}
}

func TestHTTPServerService_DrainsOnCancel(t *testing.T) {
	t.Parallel()

	srv := newFakeListener()
	done, cancel := serveAsync(NewHTTPServerService(srv, time.Second, zerolog.Nop()))
	srv.waitStarted(t)
	cancel()

	if err := waitServe(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if n := srv.shutdowns.Load(); n != 1 {
		t.Errorf("Shutdown called %d times, want 1", n)
	}
}

func TestHTTPServerService_Failures(t *testing.T) {
	t.Parallel()

	bindErr := errors.New("listen tcp :8080: bind: address already in use")

	t.Run("listener error", func(t *testing.T) {
		t.Parallel()
		srv := newFakeListener()
		srv.listenErr = bindErr

		err := NewHTTPServerService(srv, time.Second, zerolog.Nop()).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve = %v, want %v", err, bindErr)
		}
		if srv.shutdowns.Load() != 0 {
			t.Error("a listener that never bound should not be drained")
		}
	})

	t.Run("listener exits unasked", func(t *testing.T) {
		t.Parallel()
		srv := newFakeListener()
		srv.exitEarly = true

		err := NewHTTPServerService(srv, time.Second, zerolog.Nop()).Serve(context.Background())
		if !errors.Is(err, errListenerExited) {
			t.Errorf("Serve = %v, want errListenerExited", err)
		}
	})

	t.Run("drain error", func(t *testing.T) {
		t.Parallel()
		drainErr := errors.New("context deadline exceeded while draining")
		srv := newFakeListener()
		srv.shutdownErr = drainErr

		done, cancel := serveAsync(NewHTTPServerService(srv, time.Second, zerolog.Nop()))
		srv.waitStarted(t)
		cancel()

		if err := waitServe(t, done); !errors.Is(err, drainErr) {
			t.Errorf("Serve = %v, want %v", err, drainErr)
		}
	})
}

func TestHTTPServerService_RealServer(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	done, cancel := serveAsync(NewHTTPServerService(srv, time.Second, zerolog.Nop()))

	// Give ListenAndServe a moment to bind before draining.
	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := waitServe(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	t.Parallel()

	srv := newFakeListener()
	sup := suture.New("api", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(srv, time.Second, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	supErr := sup.ServeBackground(ctx)
	srv.waitStarted(t)
	cancel()
	<-supErr

	if srv.listens.Load() != 1 {
		t.Errorf("ListenAndServe called %d times, want 1", srv.listens.Load())
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
	}
}
