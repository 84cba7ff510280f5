// package server contains the HTTP surface of the collection backend
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stereo/internal/discovery"
	"github.com/desertthunder/stereo/internal/envelope"
	"github.com/desertthunder/stereo/internal/session"
	"github.com/desertthunder/stereo/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the collection backend.
// Implementations handle specific endpoints (websocket sessions, playback triggers).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server assembles the router, session registry and websocket endpoint into
// a runnable HTTP server.
type Server struct {
	cfg        *shared.Config
	logger     *log.Logger
	registry   *session.Registry
	httpServer *http.Server
}

// New wires the backend's HTTP surface.
func New(cfg *shared.Config, provider discovery.Provider, version string, logger *log.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: session.NewRegistry(),
	}

	opts := session.Options{
		QueueSize:         cfg.Session.QueueSize,
		MaxChunkSize:      cfg.Session.MaxChunkSize,
		MaxDelay:          cfg.Session.MaxDelay(),
		Debounce:          cfg.Session.Debounce(),
		Version:           version,
		DefaultCollection: cfg.DefaultCollectionPath(),
		MaxOpenConns:      cfg.Storage.MaxOpenConns,
		MaxIdleConns:      cfg.Storage.MaxIdleConns,
	}

	router := NewBasicRouter()
	router.Use(LogRequests(logger))
	router.Handler(NewWSHandler(provider, s.registry, opts, logger))
	router.Handle(http.MethodPost, "/play/{id}", http.HandlerFunc(s.handlePlay))
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(s.handleHealth))

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	return s
}

// Serve listens until the context is cancelled, then drains connections.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", s.httpServer.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// handlePlay broadcasts a play-id event to every live session, letting other
// local programs trigger playback in connected clients.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	ytID := r.PathValue("id")
	if ytID == "" {
		http.Error(w, "missing track id", http.StatusBadRequest)
		return
	}

	delivered := s.registry.Broadcast(envelope.NewPlayID(ytID))
	s.logger.Info("play broadcast", "yt_id", ytID, "sessions", delivered)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"delivered": delivered})
}

// handleHealth reports liveness and the live session count.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}
