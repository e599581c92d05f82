package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// DefaultHistoryLimit is the number of builds /admin/status reports when
// ?history is absent; ?history=0 reports every build.
const DefaultHistoryLimit = 10

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: search and index services are required")

// Server serves the HTTP API.
type Server struct {
	search driving.SearchService
	index  driving.IndexService

	// background bounds how long POST /admin/rebuild waits for its build;
	// the build itself runs until the index service completes or closes it.
	background context.Context
	rebuilds   sync.WaitGroup

	mux *http.ServeMux
}

// NewServer creates a server over the given services.
func NewServer(search driving.SearchService, index driving.IndexService) (*Server, error) {
	if search == nil || index == nil {
		return nil, ErrMissingService
	}
	s := &Server{
		search:     search,
		index:      index,
		background: context.Background(),
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /search", s.handleSearchTitles)
	s.mux.HandleFunc("GET /titles/search", s.handleSearchTitles)
	s.mux.HandleFunc("GET /names/search", s.handleSearchNames)
	s.mux.HandleFunc("GET /titles/{id}", s.handleGetTitle)
	s.mux.HandleFunc("GET /names/{id}", s.handleGetName)
	s.mux.HandleFunc("POST /admin/rebuild", s.handleRebuild)
	s.mux.HandleFunc("GET /admin/status", s.handleStatus)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Handle mounts an additional handler, such as the MCP endpoint.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Wait blocks until background rebuilds have finished.
func (s *Server) Wait() {
	s.rebuilds.Wait()
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.background = ctx

	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown: %v", err)
		}
	}()

	logger.Info("http api listening on %s", ln.Addr())
	err := httpServer.Serve(ln)
	s.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
