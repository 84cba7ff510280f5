// Package session implements the per-connection protocol engine.
//
// Each websocket connection gets one [Session] running five cooperating
// loops under an [errgroup.Group]: initial data push, frame receive, command
// dispatch, change debounce and outbound batching. A clean peer disconnect
// ends the session quietly; any internal fault tears it down with close code
// 1011 after cancelling the siblings.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/stereo/internal/catalog"
	"github.com/desertthunder/stereo/internal/discovery"
	"github.com/desertthunder/stereo/internal/envelope"
	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// errPeerClosed marks the normal end of a session: the peer went away, for
// any reason, before the server did.
var errPeerClosed = errors.New("peer closed connection")

// Conn is the websocket surface a session drives, satisfied by
// [websocket.Conn].
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Options tunes a session's protocol engine.
type Options struct {
	// QueueSize bounds the inbound and outbound queues.
	QueueSize int
	// MaxChunkSize caps the events per outbound frame.
	MaxChunkSize int
	// MaxDelay caps how long a queued event waits before its chunk flushes.
	MaxDelay time.Duration
	// Debounce is the quiet period before change notifications go out.
	Debounce time.Duration
	// Version is reported to the client on connect.
	Version string
	// DefaultCollection is the collection file opened for new sessions.
	// Empty means the session starts without a collection.
	DefaultCollection string
	// MaxOpenConns and MaxIdleConns bound each collection store's pool.
	MaxOpenConns int
	MaxIdleConns int
}

// Session serves one websocket client.
type Session struct {
	id       string
	conn     Conn
	opts     Options
	logger   *log.Logger
	registry *Registry

	mu        sync.Mutex
	store     *catalog.Store
	inbound   chan envelope.Command
	batcher   *Batcher
	debouncer *Debouncer
	searches  *Supervisor
	handlers  map[string]handlerFunc
}

// New creates a session for an accepted connection.
func New(conn Conn, provider discovery.Provider, registry *Registry, opts Options, logger *log.Logger) *Session {
	s := &Session{
		id:       shared.GenerateID(),
		conn:     conn,
		opts:     opts,
		registry: registry,
		inbound:  make(chan envelope.Command, opts.QueueSize),
	}
	s.logger = shared.WithLogger(logger, "session", s.id)

	if opts.DefaultCollection != "" {
		s.store = s.newStore(opts.DefaultCollection)
	}

	s.batcher = NewBatcher(opts.QueueSize, opts.MaxChunkSize, opts.MaxDelay, s.writeBatch)
	s.debouncer = NewDebouncer(opts.Debounce, s.notifyChanged)
	s.searches = NewSupervisor(provider, s.emit, s.logger)
	s.handlers = s.handlerTable()

	return s
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Run serves the connection until the peer disconnects, the context ends or
// a loop faults. Only faults return an error; they also close the websocket
// with code 1011.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Unblock a pending read once any sibling fails or the server stops.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	s.registry.Add(s.id, func(event envelope.Event) error {
		return s.batcher.Enqueue(ctx, event)
	})
	defer s.registry.Remove(s.id)
	defer s.searches.CancelAll()

	s.logger.Info("session started", "live", s.registry.Len())

	g.Go(func() error { return s.sendInitialData(ctx) })
	g.Go(func() error { return s.receiveLoop(ctx) })
	g.Go(func() error { return s.dispatchLoop(ctx) })
	g.Go(func() error { return s.debouncer.Run(ctx) })
	g.Go(func() error { return s.batcher.Run(ctx) })

	err := g.Wait()
	if err == nil || errors.Is(err, errPeerClosed) {
		s.logger.Info("session closed")
		return nil
	}

	s.logger.Error("session faulted", "error", err)
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal error")
	if werr := s.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil {
		s.logger.Debug("failed to send close frame", "error", werr)
	}
	return err
}

// activeStore returns the current collection store, or nil when the session
// has none. The dispatcher can swap the store while the debouncer reads it.
func (s *Session) activeStore() *catalog.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// setStore replaces the active collection store.
func (s *Session) setStore(store *catalog.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// newStore builds a store with the session's pool limits applied.
func (s *Session) newStore(path string) *catalog.Store {
	store := catalog.NewStore(path)
	store.SetPool(s.opts.MaxOpenConns, s.opts.MaxIdleConns)
	return store
}

// emit queues one event for the client.
func (s *Session) emit(ctx context.Context, event envelope.Event) error {
	return s.batcher.Enqueue(ctx, event)
}

// writeBatch encodes a chunk and writes it as one text frame.
func (s *Session) writeBatch(events []envelope.Event) error {
	data, err := envelope.EncodeEvents(events)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// sendInitialData pushes the backend version and default collection snapshot
// to a freshly connected client.
func (s *Session) sendInitialData(ctx context.Context) error {
	if err := s.emit(ctx, envelope.NewBackendInfo(s.opts.Version)); err != nil {
		return err
	}

	store := s.activeStore()
	if store == nil {
		return nil
	}
	collection, err := collectionSnapshot(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to snapshot default collection: %w", err)
	}
	return s.emit(ctx, envelope.NewDefaultCollection(*collection))
}

// receiveLoop reads frames, decodes them and queues commands for dispatch.
// Undecodable frames are dropped with a log line; the connection stays up.
func (s *Session) receiveLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return errPeerClosed
		}

		cmd, err := envelope.DecodeCommand(data)
		if err != nil {
			s.logger.Warn("dropping bad frame", "error", err)
			continue
		}

		select {
		case s.inbound <- cmd:
		case <-ctx.Done():
			return nil
		}
	}
}

// dispatchLoop runs queued commands one at a time, in arrival order.
func (s *Session) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.inbound:
			if err := s.dispatch(ctx, cmd); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// dispatch runs one command's handler. Handler errors become error
// notifications; only enqueue failures propagate and end the session.
func (s *Session) dispatch(ctx context.Context, cmd envelope.Command) error {
	tag := cmd.CommandType()
	handler, ok := s.handlers[tag]
	if !ok {
		s.logger.Warn("no handler for command", "type", tag)
		return nil
	}

	err := handler(ctx, cmd)
	if err == nil {
		return nil
	}
	if errors.Is(err, shared.ErrSessionClosed) || ctx.Err() != nil {
		return err
	}

	s.logger.Warn("command failed", "type", tag, "error", err)
	notice := envelope.NewNotification(err.Error(), envelope.SeverityError)
	return s.emit(ctx, notice)
}

// notifyChanged tells the client its view of the collection is stale and
// follows up with a fresh count. A burst of mutations produces one of each.
func (s *Session) notifyChanged(ctx context.Context) error {
	if err := s.emit(ctx, envelope.NewReloadTracks()); err != nil {
		return err
	}

	store := s.activeStore()
	if store == nil {
		return nil
	}
	collection, err := collectionSnapshot(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to snapshot collection: %w", err)
	}
	return s.emit(ctx, envelope.NewCollectionInfo(*collection))
}

// collectionSnapshot describes a collection by re-querying its row count.
func collectionSnapshot(ctx context.Context, store *catalog.Store) (*models.Collection, error) {
	size, err := store.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &models.Collection{Path: store.Path(), Size: size}, nil
}
