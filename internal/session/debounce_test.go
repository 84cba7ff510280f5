package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	t.Run("CoalescesBurstIntoOneNotification", func(t *testing.T) {
		var count atomic.Int32
		d := NewDebouncer(20*time.Millisecond, func(ctx context.Context) error {
			count.Add(1)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go d.Run(ctx)

		for i := 0; i < 25; i++ {
			d.Mark()
		}

		time.Sleep(100 * time.Millisecond)
		if got := count.Load(); got != 1 {
			t.Errorf("expected 1 notification for the burst, got %d", got)
		}
	})

	t.Run("LaterMarkTriggersAgain", func(t *testing.T) {
		var count atomic.Int32
		d := NewDebouncer(10*time.Millisecond, func(ctx context.Context) error {
			count.Add(1)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go d.Run(ctx)

		d.Mark()
		time.Sleep(50 * time.Millisecond)
		d.Mark()
		time.Sleep(50 * time.Millisecond)

		if got := count.Load(); got != 2 {
			t.Errorf("expected 2 notifications, got %d", got)
		}
	})

	t.Run("NoMarksNoNotifications", func(t *testing.T) {
		var count atomic.Int32
		d := NewDebouncer(5*time.Millisecond, func(ctx context.Context) error {
			count.Add(1)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go d.Run(ctx)

		time.Sleep(50 * time.Millisecond)
		if got := count.Load(); got != 0 {
			t.Errorf("expected no notifications, got %d", got)
		}
	})

	t.Run("NotifyErrorStopsRun", func(t *testing.T) {
		notifyErr := errors.New("queue gone")
		d := NewDebouncer(time.Millisecond, func(ctx context.Context) error {
			return notifyErr
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- d.Run(ctx) }()

		d.Mark()

		select {
		case err := <-errCh:
			if !errors.Is(err, notifyErr) {
				t.Errorf("expected notify error, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Run did not return after notify failure")
		}
	})
}
