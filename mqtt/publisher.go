// publisher.go - FIFO queue that forwards cart changes to the broker
// A single worker drains the queue, so events for a user leave in the order they happened

package mqtt // Declares the package name

import ( // Import required packages
	"errors"
	"log/slog"
	"sync"

	"cafesantander/cart" // Cart contents published on every change
)

const queueSize = 100 // Pending events kept while the broker is slow

// cartEvent is one queued publication
type cartEvent struct {
	userID   uint
	contents cart.Contents
}

// CartPublisher implements cart.Notifier on top of Publish.
type CartPublisher struct {
	publish func(topic string, payload interface{}) error
	queue   chan cartEvent // Buffered channel for pending events
	mu      sync.Mutex     // Guards closed
	closed  bool
	done    chan struct{}
}

// NewCartPublisher starts the queue worker. Call Close on shutdown.
func NewCartPublisher() *CartPublisher {
	return newCartPublisher(Publish)
}

func newCartPublisher(publish func(string, interface{}) error) *CartPublisher {
	p := &CartPublisher{
		publish: publish,
		queue:   make(chan cartEvent, queueSize),
		done:    make(chan struct{}),
	}
	go p.process() // Start queue processor goroutine
	return p
}

// CartChanged enqueues the event without waiting for the broker.
// When the queue is full the event is dropped; the next change carries the full cart anyway.
func (p *CartPublisher) CartChanged(userID uint, contents cart.Contents) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- cartEvent{userID: userID, contents: contents}: // Add to queue
	default:
		slog.Warn("mqtt queue full, cart event dropped", "user_id", userID)
	}
}

// Close stops accepting events and waits for the queued ones to be sent.
func (p *CartPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}

// process publishes queued events one at a time (FIFO)
func (p *CartPublisher) process() {
	defer close(p.done)
	for ev := range p.queue {
		err := p.publish(CartTopic(ev.userID), map[string]interface{}{
			"userId": ev.userID,
			"cart":   ev.contents,
			"count":  ev.contents.Count(),
		})
		if err != nil && !errors.Is(err, ErrNotConnected) {
			slog.Warn("mqtt cart event not published", "user_id", ev.userID, "err", err)
		}
	}
}
