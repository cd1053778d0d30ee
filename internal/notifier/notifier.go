// Package notifier implements a shared value that multiple
// watchers can be notified about when it changes.
package notifier

import (
	"sync"
)

// Notifier holds a shared value that can be watched for changes.
// Methods on a Notifier may be called concurrently.
// The zero value holds a nil value that has never been set.
type Notifier struct {
	mu      sync.RWMutex
	wait    sync.Cond
	version int
	value   interface{}
	closed  bool
}

func (n *Notifier) needsInit() bool {
	return n.wait.L == nil
}

func (n *Notifier) init() {
	if n.needsInit() {
		n.wait.L = n.mu.RLocker()
	}
}

// Set sets the shared value and notifies all watchers.
// The value should not be changed after it's been set.
func (n *Notifier) Set(v interface{}) {
	n.mu.Lock()
	n.init()
	n.version++
	n.value = v
	n.mu.Unlock()
	n.wait.Broadcast()
}

// Get returns the current value.
func (n *Notifier) Get() interface{} {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// Close closes the Notifier, unblocking any outstanding watchers.
// Close always returns nil.
func (n *Notifier) Close() error {
	n.mu.Lock()
	n.init()
	n.closed = true
	n.mu.Unlock()
	n.wait.Broadcast()
	return nil
}

// Closed reports whether the Notifier has been closed.
func (n *Notifier) Closed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.closed
}

// Watch returns a Watcher that can be used to watch for changes to the value.
// If Set hasn't been called on the Notifier, then the watcher
// will block until it is (or until it's closed).
func (n *Notifier) Watch() *Watcher {
	return &Watcher{notifier: n}
}

// Watcher represents a single watcher of a shared value.
type Watcher struct {
	notifier *Notifier
	version  int
	value    interface{}
	closed   bool
}

// Next blocks until there is a new value to be retrieved from the
// Notifier. It also unblocks when the Notifier or the Watcher itself
// is closed. Next returns false if either has been closed.
// Intermediate values may be skipped if they're set faster than
// the watcher reads them.
func (w *Watcher) Next() bool {
	n := w.notifier
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.needsInit() {
		n.mu.RUnlock()
		n.mu.Lock()
		n.init()
		n.mu.Unlock()
		n.mu.RLock()
	}

	// We can go around this loop a maximum of two times,
	// because the only thing that can cause a Wait to
	// return is for the condition to be triggered,
	// which can only happen if Set is called (causing
	// the version to increment) or it is closed
	// causing the closed flag to be set.
	// Both these cases will cause Next to return.
	for {
		if w.version != n.version {
			w.version = n.version
			w.value = n.value
			return true
		}
		if n.closed || w.closed {
			return false
		}
		n.wait.Wait()
	}
}

// Value returns the value retrieved by the most recent
// call to Next.
func (w *Watcher) Value() interface{} {
	return w.value
}

// Close closes the Watcher without closing the underlying
// Notifier. It may be called concurrently with Next.
func (w *Watcher) Close() {
	w.notifier.mu.Lock()
	w.notifier.init()
	w.closed = true
	w.notifier.mu.Unlock()
	w.notifier.wait.Broadcast()
}
