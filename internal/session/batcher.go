package session

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/stereo/internal/envelope"
	"github.com/desertthunder/stereo/internal/shared"
)

// Batcher coalesces outbound events into bounded chunks.
//
// Events flow through a fixed-size queue so producers block once the peer
// stops draining. A chunk flushes as soon as it reaches maxChunk events, or
// maxDelay after its first event arrived, whichever comes first. A flood of
// queued events therefore leaves as a run of full chunks with one partial
// chunk at the end.
type Batcher struct {
	queue    chan envelope.Event
	maxChunk int
	maxDelay time.Duration
	flush    func([]envelope.Event) error
}

// NewBatcher creates a batcher that delivers chunks through flush.
func NewBatcher(queueSize, maxChunk int, maxDelay time.Duration, flush func([]envelope.Event) error) *Batcher {
	return &Batcher{
		queue:    make(chan envelope.Event, queueSize),
		maxChunk: maxChunk,
		maxDelay: maxDelay,
		flush:    flush,
	}
}

// Enqueue queues one event for delivery, blocking for backpressure when the
// queue is full. Returns an error wrapping [shared.ErrSessionClosed] once the
// context is done.
func (b *Batcher) Enqueue(ctx context.Context, event envelope.Event) error {
	select {
	case b.queue <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cannot enqueue %s: %w", event.EventType(), shared.ErrSessionClosed)
	}
}

// Run drives the flush loop until the context is cancelled or a flush fails.
func (b *Batcher) Run(ctx context.Context) error {
	timer := time.NewTimer(b.maxDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		var first envelope.Event
		select {
		case <-ctx.Done():
			return nil
		case first = <-b.queue:
		}

		batch := make([]envelope.Event, 1, b.maxChunk)
		batch[0] = first
		timer.Reset(b.maxDelay)

		fired := false
		for !fired && len(batch) < b.maxChunk {
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return nil
			case event := <-b.queue:
				batch = append(batch, event)
			case <-timer.C:
				fired = true
			}
		}
		if !fired && !timer.Stop() {
			<-timer.C
		}

		if err := b.flush(batch); err != nil {
			return fmt.Errorf("failed to flush %d events: %w", len(batch), err)
		}
	}
}
