// Package event provides the change-notification bus between the snapshot
// store and its observers.
package event

import "sync"

// Type names an event.
type Type string

// SnapshotUpdated is raised after the held snapshot changes.
const SnapshotUpdated Type = "snapshotUpdated"

// Event is a notification delivered to subscribers.
type Event struct {
	Type Type
	// IsInitial marks the update that established the first snapshot.
	IsInitial bool
}

// Listener receives events.
type Listener func(Event)

// Bus fans events out to listeners in subscription order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: map[int]Listener{}}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers ev to every listener. Listeners may subscribe or
// unsubscribe while being called; changes apply from the next dispatch.
func (b *Bus) Dispatch(ev Event) {
	b.mu.Lock()
	fns := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
