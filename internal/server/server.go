// Package server exposes test runs and generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AndreyAkinshin/testrig/internal/config"
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/logging"
)

const (
	serverReadHeaderTimeout = 10 * time.Second
	serverIdleTimeout       = 120 * time.Second
	shutdownTimeout         = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Root is the project directory tests run in.
	Root    string
	Config  *config.Config
	Version string
	// NewCollaborator builds the framework collaborator for a run. Nil uses
	// framework.New with the default command runner.
	NewCollaborator func(name string) (framework.Collaborator, error)
	// Metrics receives run metrics. Nil creates a fresh set.
	Metrics *Metrics
}

// Server handles the testrig HTTP API. Only one test run executes at a
// time; concurrent run requests get 409 Conflict.
type Server struct {
	root            string
	cfg             *config.Config
	version         string
	newCollaborator func(name string) (framework.Collaborator, error)
	metrics         *Metrics
	logger          *slog.Logger

	runMu sync.Mutex
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		root:            opts.Root,
		cfg:             opts.Config,
		version:         opts.Version,
		newCollaborator: opts.NewCollaborator,
		metrics:         opts.Metrics,
		logger:          logging.For("server"),
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.newCollaborator == nil {
		s.newCollaborator = func(name string) (framework.Collaborator, error) {
			return framework.New(name, nil)
		}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the routed handler wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /test/run", s.handleRun)
	mux.HandleFunc("POST /test/generate", s.handleGenerate)
	mux.HandleFunc("GET /test/stream", s.handleStream)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusNotFound, "Not found")
	})
	return withCORS(mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return testrigerrors.Environmentf("listen on %s: %v", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: serverReadHeaderTimeout,
		IdleTimeout:       serverIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes the given value as JSON and writes it with status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, errorResponse{Error: msg})
}

// statusFor maps a run or generate error to an HTTP status.
func statusFor(err error) int {
	if testrigerrors.IsNotFound(err) {
		return http.StatusNotFound
	}
	switch testrigerrors.GetExitCode(err) {
	case testrigerrors.ExitConfigError:
		return http.StatusUnprocessableEntity
	case testrigerrors.ExitEnvironmentError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
