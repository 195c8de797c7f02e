package sync

import (
	stdsync "sync"
)

// saveQueue serializes saves for one collection without blocking the
// caller: at most one save runs at a time, and requests arriving while
// one is in flight are coalesced down to the most recent snapshot.
// Intermediate snapshots are safe to drop because every save carries
// the whole collection.
type saveQueue struct {
	mu      stdsync.Mutex
	cond    *stdsync.Cond
	running bool
	pending func()
}

func newSaveQueue() *saveQueue {
	q := &saveQueue{}
	q.cond = stdsync.NewCond(&q.mu)
	return q
}

// enqueue schedules fn. If a save is already in flight, fn replaces
// any previously pending one and runs after the current save finishes.
func (q *saveQueue) enqueue(fn func()) {
	q.mu.Lock()
	if q.running {
		q.pending = fn
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go q.run(fn)
}

func (q *saveQueue) run(fn func()) {
	for {
		fn()

		q.mu.Lock()
		if q.pending == nil {
			q.running = false
			q.cond.Broadcast()
			q.mu.Unlock()
			return
		}
		fn = q.pending
		q.pending = nil
		q.mu.Unlock()
	}
}

// wait blocks until the queue is idle.
func (q *saveQueue) wait() {
	q.mu.Lock()
	for q.running {
		q.cond.Wait()
	}
	q.mu.Unlock()
}
