// bus.go - Process-wide publish/subscribe channel between cart instances

package cartsync

import (
	"sync"

	"github.com/google/uuid"
)

// Message is broadcast after a cart instance changes its items.
type Message struct {
	Origin string `json:"origin"` // Sender instance, never delivered back to it
	Items  []Item `json:"items"`
	Count  int    `json:"count"`
}

type subscriber struct {
	origin string
	fn     func(Message)
}

// Bus delivers messages synchronously to every subscriber except the sender.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscriber)}
}

// NewOrigin returns a fresh sender id.
func NewOrigin() string { return uuid.NewString() }

// Subscribe registers fn for messages from any origin other than origin.
// The returned func removes the subscription and is safe to call twice.
func (b *Bus) Subscribe(origin string, fn func(Message)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{origin: origin, fn: fn}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish hands msg to the other subscribers. Callbacks run outside the lock,
// so a subscriber may publish or unsubscribe from inside its callback.
func (b *Bus) Publish(msg Message) {
	b.mu.Lock()
	targets := make([]func(Message), 0, len(b.subs))
	for _, s := range b.subs {
		if s.origin != msg.Origin {
			targets = append(targets, s.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range targets {
		fn(Message{Origin: msg.Origin, Items: cloneItems(msg.Items), Count: msg.Count})
	}
}
