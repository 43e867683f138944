// Package tracker counts connected viewers and broadcasts every change to
// all subscribers, mirroring the online-count channel of the hymods server.
package tracker

import "sync"

// Tracker is a connect/disconnect counter with subscriber fan-out.
type Tracker struct {
	mu     sync.Mutex
	online int
	subs   map[chan int]struct{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{subs: make(map[chan int]struct{})}
}

// Connect registers a viewer, broadcasts the new count and returns it.
func (t *Tracker) Connect() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online++
	t.broadcastLocked()
	return t.online
}

// Disconnect removes a viewer, broadcasts the new count and returns it.
// The returned value is the count this call produced, so callers can log
// it without racing a concurrent connect.
func (t *Tracker) Disconnect() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.online > 0 {
		t.online--
	}
	t.broadcastLocked()
	return t.online
}

// Online returns the current viewer count.
func (t *Tracker) Online() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.online
}

// Subscribe returns a channel that receives the viewer count after every
// change, starting with the current value.
func (t *Tracker) Subscribe() chan int {
	ch := make(chan int, 8)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	ch <- t.online
	t.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel.
func (t *Tracker) Unsubscribe(ch chan int) {
	t.mu.Lock()
	delete(t.subs, ch)
	t.mu.Unlock()
}

// broadcastLocked fans the count out without blocking: a subscriber that
// stopped draining just misses intermediate counts.
func (t *Tracker) broadcastLocked() {
	for ch := range t.subs {
		select {
		case ch <- t.online:
		default:
		}
	}
}
