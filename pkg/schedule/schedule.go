// Package schedule runs delayed and periodic callbacks that are owned by a
// caller and cancelled when it goes away.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// Task is a running scheduled callback.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func start(ctx context.Context, run func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer t.finish()
		run(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		t.finish()
	}))
	return t
}

// After runs fn once after d unless the task is stopped first or ctx ends.
func After(ctx context.Context, d time.Duration, fn func(ctx context.Context)) *Task {
	return start(ctx, func(ctx context.Context) {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
			fn(ctx)
		}
	})
}

// Every runs fn every d until the task is stopped or ctx ends.
func Every(ctx context.Context, d time.Duration, fn func(ctx context.Context, now time.Time)) *Task {
	if d <= 0 {
		panic(fmt.Sprintf("schedule: non-positive interval %v", d))
	}
	return start(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				fn(ctx, now)
			}
		}
	})
}

// Stop cancels the task and waits for a running callback to return.
// It is safe to call more than once.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed once the task has finished, for any reason.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) finish() {
	t.once.Do(func() { close(t.done) })
}
