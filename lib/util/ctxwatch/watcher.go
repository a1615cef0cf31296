package ctxwatch

import (
	"context"
	"sync"
)

// Watcher invokes onCancel when a watched context is canceled. If onCancel
// fired, onUnwatch is invoked when watching stops, giving the owner a chance
// to undo whatever onCancel did.
type Watcher struct {
	onCancel  func()
	onUnwatch func()

	unwatch chan struct{}

	mu       sync.Mutex
	watching bool
	canceled bool
}

func NewWatcher(onCancel func(), onUnwatch func()) *Watcher {
	return &Watcher{
		onCancel:  onCancel,
		onUnwatch: onUnwatch,
		unwatch:   make(chan struct{}),
	}
}

// Watch starts watching ctx. It panics if the previous Watch was not ended
// with Unwatch.
func (T *Watcher) Watch(ctx context.Context) {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.watching {
		panic("Watch called while already watching")
	}

	T.canceled = false
	if ctx.Done() == nil {
		return
	}
	T.watching = true

	go func() {
		select {
		case <-ctx.Done():
			T.onCancel()
			T.canceled = true
			<-T.unwatch
		case <-T.unwatch:
		}
	}()
}

// Unwatch stops watching the current context. Safe to call when nothing is
// being watched.
func (T *Watcher) Unwatch() {
	T.mu.Lock()
	defer T.mu.Unlock()

	if !T.watching {
		return
	}

	// the send synchronizes with the watch goroutine either way its select
	// went, so canceled is safe to read afterwards
	T.unwatch <- struct{}{}
	if T.canceled {
		T.canceled = false
		T.onUnwatch()
	}
	T.watching = false
}
