package session

import (
	"context"
	"time"
)

// Debouncer coalesces collection change marks into a single refresh.
//
// Mark is cheap and never blocks. After the first mark, Run waits one quiet
// period, discards every mark that arrived meanwhile, and invokes notify
// once. Rapid write bursts therefore trigger one client refresh instead of
// one per write.
type Debouncer struct {
	signal chan struct{}
	quiet  time.Duration
	notify func(ctx context.Context) error
}

// NewDebouncer creates a debouncer that calls notify after writes settle.
func NewDebouncer(quiet time.Duration, notify func(ctx context.Context) error) *Debouncer {
	return &Debouncer{
		signal: make(chan struct{}, 1),
		quiet:  quiet,
		notify: notify,
	}
}

// Mark records that the collection changed. Safe from any goroutine.
func (d *Debouncer) Mark() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Run drives the debounce loop until the context is cancelled or a
// notification fails.
func (d *Debouncer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.signal:
		}

		timer := time.NewTimer(d.quiet)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		// Marks that landed during the quiet period ride along with this
		// notification.
		select {
		case <-d.signal:
		default:
		}

		if err := d.notify(ctx); err != nil {
			return err
		}
	}
}
