package events

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// Broker is an in-process publisher that fans change events out to
// per-user subscribers. It backs the SSE change feed. Slow subscribers
// drop events rather than blocking the publish path.
type Broker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan domain.ChangeEvent]struct{}
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uuid.UUID]map[chan domain.ChangeEvent]struct{})}
}

// Subscribe registers a listener for one user's change events. The
// returned cancel function must be called when the listener goes away.
func (b *Broker) Subscribe(userID uuid.UUID) (<-chan domain.ChangeEvent, func()) {
	ch := make(chan domain.ChangeEvent, 16)

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan domain.ChangeEvent]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, userID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// PublishChange delivers the event to every subscriber of its user.
func (b *Broker) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
	return nil
}

// Close is a no-op; subscriber channels are closed by their cancel funcs.
func (b *Broker) Close() {}
