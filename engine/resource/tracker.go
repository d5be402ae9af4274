package resource

import "sync"

// Tracker counts the shared objects created through it that are still alive, per Kind.
// Devices own one so tests and diagnostics can check for leaks.
type Tracker struct {
	mu      *sync.Mutex
	live    [kindCount]int
	created [kindCount]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{mu: &sync.Mutex{}}
}

// NewView is NewView with the created object counted by t.
func (t *Tracker) NewView(kind Kind, label string, object any, destroy func(object any)) *View {
	return newView(t, kind, label, object, destroy)
}

// Live returns the number of objects of kind that have not been destroyed.
func (t *Tracker) Live(kind Kind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live[kind]
}

// Created returns the total number of objects of kind ever created through t.
func (t *Tracker) Created(kind Kind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.created[kind]
}

// TotalLive returns the number of live objects across all kinds.
func (t *Tracker) TotalLive() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.live {
		n += c
	}
	return n
}

func (t *Tracker) onCreate(kind Kind) {
	t.mu.Lock()
	t.live[kind]++
	t.created[kind]++
	t.mu.Unlock()
}

func (t *Tracker) onDestroy(kind Kind) {
	t.mu.Lock()
	t.live[kind]--
	t.mu.Unlock()
}
