// Package server runs the local HTTP file server for the built web UI.
// It is a thin wrapper around net/http's FileServer: the handler's native
// MIME inference, range support, and directory listings are the full
// behavior, with no routing or caching on top.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrNotListening is returned when serving is attempted before a
// successful call to Listen.
var ErrNotListening = errors.New("server is not listening")

// shutdownTimeout bounds how long in-flight requests may delay exit
// after an interrupt.
const shutdownTimeout = 5 * time.Second

// Config holds the server parameters. Port 0 binds an ephemeral port,
// which tests rely on. An empty Host binds all interfaces.
type Config struct {
	Host string
	Port int
	Root string
}

// Server serves static files from a fixed root directory until its
// context is cancelled. The root is passed explicitly to the handler;
// the process working directory is never changed.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	listener net.Listener
	httpSrv  *http.Server

	requests atomic.Int64
	bytes    atomic.Int64
}

// New creates a server for the given configuration. Nothing is bound
// until Listen is called.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
	}
	s.httpSrv = &http.Server{
		Handler: s.countRequests(http.FileServer(http.Dir(cfg.Root))),
	}
	return s
}

// Listen binds the TCP listening socket. Bind failures (port in use,
// permission denied) surface here, before any status output or browser
// launch. Calling Listen twice is an error.
func (s *Server) Listen() error {
	if s.listener != nil {
		return fmt.Errorf("already listening on %s", s.listener.Addr())
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.listener = listener
	return nil
}

// Port returns the bound TCP port. Valid only after Listen.
func (s *Server) Port() int {
	if s.listener == nil {
		return s.cfg.Port
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// URL returns the address to open in a browser. The server may bind all
// interfaces, but the URL always targets localhost.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port())
}

// Serve blocks handling requests until ctx is cancelled, then shuts the
// server down gracefully and closes the listener. A cancellation-driven
// shutdown returns nil; any other serve failure is returned as an error.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return ErrNotListening
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpSrv.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
		// Serve has returned ErrServerClosed by now; drain it so the
		// goroutine does not leak.
		<-serveErr
		return nil

	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	}
}

// Requests returns the number of requests handled so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// BytesSent returns the number of response body bytes written so far.
func (s *Server) BytesSent() int64 {
	return s.bytes.Load()
}

// countRequests wraps the file handler to track per-session totals and
// emit debug-level request logs.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &countingWriter{ResponseWriter: w}
		next.ServeHTTP(cw, r)

		s.requests.Add(1)
		s.bytes.Add(cw.written)
		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", cw.Status(),
			"bytes", cw.written)
	})
}

// countingWriter records the status code and body size of a response.
type countingWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *countingWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *countingWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
