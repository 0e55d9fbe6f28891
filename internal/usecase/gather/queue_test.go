package gather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSerialQueue_RunsTasksOneAtATime(t *testing.T) {
	q := newSerialQueue(0)
	q.Start()
	defer q.Stop()

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Errorf("max concurrent tasks = %d, want 1", maxRunning)
	}
}

func TestSerialQueue_PropagatesError(t *testing.T) {
	q := newSerialQueue(0)
	q.Start()
	defer q.Stop()

	want := errors.New("upstream broke")
	err := q.Do(context.Background(), func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestSerialQueue_CancelledContext(t *testing.T) {
	q := newSerialQueue(0)
	q.Start()
	defer q.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Do(ctx, func(context.Context) error {
		t.Error("task ran despite cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSerialQueue_DelayBetweenTasks(t *testing.T) {
	q := newSerialQueue(10 * time.Millisecond)
	q.Start()
	defer q.Stop()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := q.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	// Two full pauses must have elapsed between the three tasks.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 20ms of pacing", elapsed)
	}
}
