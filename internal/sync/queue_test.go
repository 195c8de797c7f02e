package sync

import (
	stdsync "sync"
	"testing"
	"time"
)

func TestQueueRunsSerially(t *testing.T) {
	q := newSaveQueue()

	var mu stdsync.Mutex
	running := 0
	maxRunning := 0

	for i := 0; i < 10; i++ {
		q.enqueue(func() {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	q.wait()

	mu.Lock()
	defer mu.Unlock()
	if maxRunning > 1 {
		t.Errorf("saw %d saves in flight, want at most 1", maxRunning)
	}
}

func TestQueueCoalescesToLatest(t *testing.T) {
	q := newSaveQueue()

	block := make(chan struct{})
	started := make(chan struct{})
	q.enqueue(func() {
		close(started)
		<-block
	})
	<-started

	// Everything queued while the first save is in flight collapses to
	// the last request.
	var mu stdsync.Mutex
	var executed []int
	for i := 1; i <= 5; i++ {
		i := i
		q.enqueue(func() {
			mu.Lock()
			executed = append(executed, i)
			mu.Unlock()
		})
	}

	close(block)
	q.wait()

	mu.Lock()
	defer mu.Unlock()
	if len(executed) != 1 || executed[0] != 5 {
		t.Errorf("executed = %v, want only the latest (5)", executed)
	}
}

func TestQueueWaitOnIdleReturns(t *testing.T) {
	q := newSaveQueue()

	done := make(chan struct{})
	go func() {
		q.wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait blocked on an idle queue")
	}
}
