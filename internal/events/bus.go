package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Bus fans events out to in-process subscribers. SSE and websocket
// handlers subscribe here; modules publish through the Manager.
type Bus struct {
	subscribers map[chan Event]EventType // channel -> type filter, "" receives everything
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[chan Event]EventType),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a new subscriber. An empty filter receives all event types.
func (b *Bus) Subscribe(filter EventType) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16) // Buffer to prevent blocking
	b.subscribers[ch] = filter

	b.log.Debug().
		Str("filter", string(filter)).
		Int("total_subscribers", len(b.subscribers)).
		Msg("New subscriber added")

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)

	b.log.Debug().
		Int("total_subscribers", len(b.subscribers)).
		Msg("Subscriber removed")
}

// Emit publishes an event to every subscriber whose filter matches.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	for ch, filter := range b.subscribers {
		if filter != "" && filter != eventType {
			continue
		}
		select {
		case ch <- event:
			// Event sent successfully
		default:
			// Channel buffer full, skip this subscriber
			b.log.Warn().
				Str("event_type", string(eventType)).
				Msg("Subscriber channel full, event dropped")
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
