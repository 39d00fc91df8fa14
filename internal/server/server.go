// Package server exposes the ledger checks and the savings engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/roundup/internal/config"
	"github.com/Veraticus/roundup/internal/document"
)

// Evaluator runs the savings engine.
type Evaluator interface {
	Evaluate(ctx context.Context, req *document.Request) (*document.Response, error)
}

// Server is the HTTP API.
type Server struct {
	http.Server
	evaluator   Evaluator
	started     time.Time
	now         func() time.Time
	engineCalls atomic.Int64

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(settings config.ServerSettings, ev Evaluator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              settings.Addr,
			Handler:           mux,
			ReadTimeout:       settings.ReadTimeout,
			ReadHeaderTimeout: settings.ReadTimeout,
			WriteTimeout:      settings.WriteTimeout,
		},
		evaluator: ev,
		now:       time.Now,
	}
	s.started = s.now()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /v1/transactions:parse", s.withRequestLogging(s.handleParse))
	mux.HandleFunc("POST /v1/transactions:validator", s.withRequestLogging(s.handleValidate))
	mux.HandleFunc("POST /v1/transactions:filter", s.withRequestLogging(s.handleFilter))
	mux.HandleFunc("POST /v1/returns:nps", s.withRequestLogging(s.handleReturns("nps")))
	mux.HandleFunc("POST /v1/returns:index", s.withRequestLogging(s.handleReturns("index")))
	mux.HandleFunc("GET /v1/performance-report", s.withRequestLogging(s.handlePerformance))

	return s
}

// Run serves until ctx is canceled, then shuts down, waiting at most
// shutdownTimeout for in-flight requests.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts the server down. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// EngineCalls returns how many evaluations the server has run.
func (s *Server) EngineCalls() int64 {
	return s.engineCalls.Load()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
