package queue

import "sync"

// FIFO is an unbounded first-in first-out queue. Pop blocks until an item is
// available or the queue is closed.
type FIFO[T any] struct {
	items  []T
	closed bool
	signal sync.Cond
	mu     sync.Mutex
}

func (v *FIFO[T]) init() {
	if v.signal.L == nil {
		v.signal.L = &v.mu
	}
}

// Push appends item to the queue. Pushing to a closed queue reports false.
func (v *FIFO[T]) Push(item T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.init()

	if v.closed {
		return false
	}
	v.items = append(v.items, item)
	v.signal.Signal()
	return true
}

// Pop removes the oldest item, blocking while the queue is empty. It reports
// false once the queue is closed and drained.
func (v *FIFO[T]) Pop() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.init()

	for len(v.items) == 0 && !v.closed {
		v.signal.Wait()
	}
	if len(v.items) == 0 {
		return *new(T), false
	}
	item := v.items[0]
	v.items[0] = *new(T)
	v.items = v.items[1:]
	return item, true
}

// TryPop is like Pop but never blocks.
func (v *FIFO[T]) TryPop() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.init()

	if len(v.items) == 0 {
		return *new(T), false
	}
	item := v.items[0]
	v.items[0] = *new(T)
	v.items = v.items[1:]
	return item, true
}

// Close wakes all blocked Pops. Items already queued can still be drained.
func (v *FIFO[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.init()

	v.closed = true
	v.signal.Broadcast()
}

func (v *FIFO[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}
