package routes

import "sync"

// ProgressObserver is told each time an origin task finishes. Notifications
// say nothing about store contents; only a returned Result is complete.
type ProgressObserver interface {
	Progress(completed, total int)
}

// ProgressFunc adapts a function to ProgressObserver
type ProgressFunc func(completed, total int)

func (f ProgressFunc) Progress(completed, total int) {
	f(completed, total)
}

type progressTracker struct {
	mu        sync.Mutex
	observer  ProgressObserver
	completed int
	total     int
}

func newProgressTracker(observer ProgressObserver, total int) *progressTracker {
	return &progressTracker{observer: observer, total: total}
}

// done records one finished task and notifies in completion order
func (t *progressTracker) done() {
	if t.observer == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	t.observer.Progress(t.completed, t.total)
}
