package gather

import (
	"context"
	"sync"
	"time"
)

// serialQueue runs submitted tasks on a single worker goroutine with a
// fixed pause after each one. Every external call in the gatherer goes
// through it, so the upstream rate ceiling is respected structurally and
// back-off or jitter can be layered in later without restructuring.
type serialQueue struct {
	tasks chan queuedTask
	delay time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

type queuedTask struct {
	ctx  context.Context
	run  func(context.Context) error
	errc chan error
}

func newSerialQueue(delay time.Duration) *serialQueue {
	return &serialQueue{
		tasks: make(chan queuedTask),
		delay: delay,
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine. Safe to call more than once.
func (q *serialQueue) Start() {
	q.startOnce.Do(func() {
		go q.work()
	})
}

// Stop shuts the worker down after the in-flight task finishes.
func (q *serialQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
}

func (q *serialQueue) work() {
	for {
		select {
		case <-q.done:
			return
		case t := <-q.tasks:
			if err := t.ctx.Err(); err != nil {
				t.errc <- err
				continue
			}
			t.errc <- t.run(t.ctx)
			if q.delay > 0 {
				select {
				case <-q.done:
					return
				case <-time.After(q.delay):
				}
			}
		}
	}
}

// Do submits fn and waits for it to complete. The caller's context bounds
// both the wait for a worker slot and fn itself.
func (q *serialQueue) Do(ctx context.Context, fn func(context.Context) error) error {
	t := queuedTask{ctx: ctx, run: fn, errc: make(chan error, 1)}
	select {
	case q.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return context.Canceled
	}
	return <-t.errc
}
