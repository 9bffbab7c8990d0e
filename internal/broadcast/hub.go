package broadcast

import "sync"

// subscriberBuffer is how many undelivered events a session may queue
// before the hub starts dropping for it. Delivery is at-most-once and
// best-effort; a stalled consumer never blocks the publish path.
const subscriberBuffer = 16

// Hub fans events out to every subscribed session. There is no
// per-client filtering and no history: a subscriber only sees events
// published after it subscribed.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty hub ready for subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new session and returns its event channel plus
// a cancel function. Cancel is idempotent and must be called when the
// session ends so the hub can release the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every current subscriber without blocking.
// Sessions whose buffer is full miss the event; they reconverge on the
// next full list load.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default: // slow consumer, drop
		}
	}
}

// Subscribers reports how many sessions are currently connected.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
