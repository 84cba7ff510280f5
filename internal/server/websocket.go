package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/desertthunder/stereo/internal/discovery"
	"github.com/desertthunder/stereo/internal/session"
)

// WSHandler upgrades HTTP requests and hands the connection to a session.
// Implements the [Handler] interface for registration with a [Router].
type WSHandler struct {
	upgrader websocket.Upgrader
	provider discovery.Provider
	registry *session.Registry
	opts     session.Options
	logger   *log.Logger
}

// NewWSHandler creates the websocket endpoint handler.
func NewWSHandler(provider discovery.Provider, registry *session.Registry, opts session.Options, logger *log.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are local desktop apps, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		provider: provider,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *WSHandler) Routes() []string {
	return []string{"/ws"}
}

// ServeHTTP upgrades the request and runs a session until it ends. The
// upgrade failure response is written by the upgrader itself.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sess := session.New(conn, h.provider, h.registry, h.opts, h.logger)
	if err := sess.Run(r.Context()); err != nil {
		h.logger.Error("session ended with fault", "session", sess.ID(), "error", err)
	}
}
