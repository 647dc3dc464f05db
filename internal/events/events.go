// Package events carries zero-payload signals between storefront components.
package events

import "sync"

// Signal names a notification.
type Signal string

// CatalogChanged is published after the catalogue edit surface saves.
const CatalogChanged Signal = "catalog.changed"

// Bus delivers signals to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Signal][]subscriber
}

type subscriber struct {
	id uint64
	fn func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Signal][]subscriber)}
}

// Subscribe registers fn for sig and returns a function that detaches it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(sig Signal, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[sig] = append(b.subs[sig], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sig, id) })
	}
}

func (b *Bus) remove(sig Signal, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sig]
	for i, s := range subs {
		if s.id == id {
			b.subs[sig] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish invokes every current subscriber of sig before returning.
// Subscribers may subscribe or unsubscribe from inside their callback.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	subs := append([]subscriber(nil), b.subs[sig]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}

// Subscribers returns the number of subscribers registered for sig.
func (b *Bus) Subscribers(sig Signal) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sig])
}
