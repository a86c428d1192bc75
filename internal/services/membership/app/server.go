// Package server wires the membership store, domain service, and HTTP
// lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	entrypoint "github.com/louisbranch/memberdesk/internal/platform/cmd"
	"github.com/louisbranch/memberdesk/internal/platform/telemetry/metrics"
	"github.com/louisbranch/memberdesk/internal/platform/timeouts"
	"github.com/louisbranch/memberdesk/internal/services/membership/api/httpapi"
	"github.com/louisbranch/memberdesk/internal/services/membership/domain"
	membershipsqlite "github.com/louisbranch/memberdesk/internal/services/membership/storage/sqlite"
)

// Config holds the runtime settings of a membership server.
type Config struct {
	Addr           string
	DBPath         string
	Auth           httpapi.AuthConfig
	MetricsEnabled bool
}

// Server hosts the membership HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *membershipsqlite.Store
	metrics    *metrics.Recorder
}

// New creates a membership server listening on cfg.Addr.
func New(ctx context.Context, cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		var err error
		recorder, err = metrics.Setup(ctx, entrypoint.ServiceMembership)
		if err != nil {
			return nil, fmt.Errorf("setup metrics: %w", err)
		}
	}

	store, err := openMembershipStore(dbPath)
	if err != nil {
		shutdownMetrics(recorder)
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		shutdownMetrics(recorder)
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	svc := domain.NewService(store, nil)
	if recorder != nil {
		svc = svc.WithDecisionRecorder(recorder)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           newHandler(svc, cfg.Auth, recorder),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:   store,
		metrics: recorder,
	}, nil
}

// newHandler wraps the routes for tracing and metrics.
// Metrics wrap the mux directly so the matched pattern is visible to them.
func newHandler(svc *domain.Service, auth httpapi.AuthConfig, recorder *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if recorder != nil {
		mux.Handle("GET /metrics", recorder.Handler())
	}
	httpapi.NewHandler(svc, auth).Register(mux)

	return otelhttp.NewHandler(withRequestTimeout(recorder.Middleware(mux)), entrypoint.ServiceMembership)
}

func withRequestTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Request)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a membership server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve handles HTTP traffic until context cancellation or server stop.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("membership server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown membership http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve membership http: %w", err)
	}
}

// Close releases membership server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close membership store: %v", err)
		}
	}
	shutdownMetrics(s.metrics)
}

func openMembershipStore(path string) (*membershipsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := membershipsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open membership sqlite store: %w", err)
	}
	return store, nil
}

func shutdownMetrics(recorder *metrics.Recorder) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := recorder.Shutdown(ctx); err != nil {
		log.Printf("shutdown membership metrics: %v", err)
	}
}
