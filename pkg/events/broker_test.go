package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

func TestBroker_DeliversToMatchingUserOnly(t *testing.T) {
	b := NewBroker()
	alice := uuid.New()
	bob := uuid.New()

	aliceCh, cancelAlice := b.Subscribe(alice)
	defer cancelAlice()
	bobCh, cancelBob := b.Subscribe(bob)
	defer cancelBob()

	event := domain.ChangeEvent{Table: "entries", Op: domain.ChangeInsert, UserID: alice, RowID: uuid.New()}
	if err := b.PublishChange(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-aliceCh:
		if got.RowID != event.RowID {
			t.Fatalf("expected alice to get the published event, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected alice to receive the event")
	}

	select {
	case got := <-bobCh:
		t.Fatalf("expected bob to receive nothing, got %+v", got)
	default:
	}
}

func TestBroker_CancelStopsDelivery(t *testing.T) {
	b := NewBroker()
	userID := uuid.New()

	ch, cancel := b.Subscribe(userID)
	cancel()

	if err := b.PublishChange(context.Background(), domain.ChangeEvent{UserID: userID}); err != nil {
		t.Fatalf("publish after cancel failed: %v", err)
	}
	if _, open := <-ch; open {
		t.Fatal("expected subscriber channel closed after cancel")
	}
}

func TestBroker_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker()
	userID := uuid.New()

	_, cancel := b.Subscribe(userID)
	defer cancel()

	// Flood well past the channel buffer; publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.PublishChange(context.Background(), domain.ChangeEvent{UserID: userID})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
