// Package hub implements the live-update fan-out for product list snapshots.
package hub

import (
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
)

// Hub holds the set of live subscriber channels. Every mutation of the
// catalog publishes the full post-mutation product list to each subscriber.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []model.Product]struct{}
	buffer int
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a Hub whose subscriber channels buffer up to buffer snapshots.
func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 8
	}
	return &Hub{subs: make(map[chan []model.Product]struct{}), buffer: buffer}
}

// Subscribe registers and returns a new snapshot channel. The channel is
// closed by Unsubscribe or Close; after Close, Subscribe returns an already
// closed channel.
func (h *Hub) Subscribe() chan []model.Product {
	ch := make(chan []model.Product, h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes the channel. Unknown channels are ignored,
// so disconnect paths may call it unconditionally.
func (h *Hub) Unsubscribe(ch chan []model.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

// Publish delivers the snapshot to every subscriber without blocking. A
// subscriber whose buffer is full misses this snapshot; it will catch up on
// the next one, and each snapshot is the full list so nothing is lost for
// good. Sends happen under the lock so a concurrent Unsubscribe cannot close
// a channel mid-send.
func (h *Hub) Publish(snapshot []model.Product) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- snapshot:
		default:
			h.dropped.Add(1)
		}
	}
	n := len(h.subs)
	h.mu.Unlock()
	seq := h.published.Add(1)
	obs.Logger.Debug().
		Uint64("snapshot_seq", seq).
		Int("subscribers", n).
		Int("products", len(snapshot)).
		Msg("snapshot published")
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Metrics returns fan-out counters for observability.
func (h *Hub) Metrics() (published, dropped uint64, subscribers int) {
	return h.published.Load(), h.dropped.Load(), h.SubscriberCount()
}

// Close unsubscribes everyone and rejects future subscriptions. Used during
// shutdown so long-lived streams terminate promptly.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
