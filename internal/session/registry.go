package session

import (
	"sync"

	"github.com/desertthunder/stereo/internal/envelope"
)

// Registry tracks live sessions so server-side actors can reach them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]func(envelope.Event) error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: map[string]func(envelope.Event) error{}}
}

// Add registers a session's outbound enqueue function under its id.
func (r *Registry) Add(id string, enqueue func(envelope.Event) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = enqueue
}

// Remove drops a session. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast queues an event for every live session and returns how many
// sessions accepted it. Sessions mid-shutdown are skipped.
func (r *Registry) Broadcast(event envelope.Event) int {
	r.mu.RLock()
	enqueues := make([]func(envelope.Event) error, 0, len(r.sessions))
	for _, enqueue := range r.sessions {
		enqueues = append(enqueues, enqueue)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, enqueue := range enqueues {
		if err := enqueue(event); err == nil {
			delivered++
		}
	}
	return delivered
}
