package relay

import (
	"sync"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// Router derives per-identity topics and owns the subscribed-set.
//
// Thread Safety: all methods are safe for concurrent use.
type Router struct {
	mu         sync.Mutex
	subscribed map[string]struct{}

	// generation increments on Reset so a subscribe that straddles a
	// disconnect is not marked against the new session.
	generation uint64
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{subscribed: make(map[string]struct{})}
}

// TopicsFor returns the inbound topics of identity, or mqtt.ErrInvalidIdentity
// when identity could widen a subscription.
func (r *Router) TopicsFor(identity string) ([]string, error) {
	if err := mqtt.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	return mqtt.Topics{}.DeviceInbound(identity), nil
}

// AlreadySubscribed reports whether topic is in the subscribed-set.
func (r *Router) AlreadySubscribed(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subscribed[topic]
	return ok
}

// MarkSubscribed adds topic to the set and reports whether it was new.
func (r *Router) MarkSubscribed(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mark(topic)
}

// Reset empties the set. Called when the broker session is lost.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.subscribed)
	r.generation++
}

// Len returns the number of subscribed topics.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribed)
}

// Generation returns the current session generation.
func (r *Router) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// markIn marks topic only if no Reset happened since gen was read.
func (r *Router) markIn(gen uint64, topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		return false
	}
	return r.mark(topic)
}

func (r *Router) mark(topic string) bool {
	if _, ok := r.subscribed[topic]; ok {
		return false
	}
	r.subscribed[topic] = struct{}{}
	return true
}
