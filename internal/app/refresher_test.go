package app

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRefresher_PublishesSnapshot(t *testing.T) {
	r := NewRefresher(func(ctx context.Context) (interface{}, error) {
		return "snapshot-1", nil
	})

	published, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !published {
		t.Fatal("expected first refresh to publish")
	}
	if r.Snapshot() != "snapshot-1" {
		t.Fatalf("expected published snapshot, got %v", r.Snapshot())
	}
}

func TestRefresher_SuppressedTriggersAreDropped(t *testing.T) {
	calls := 0
	r := NewRefresher(func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	})

	r.Suppress()
	published, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if published || calls != 0 {
		t.Fatal("expected suppressed refresh to be dropped without loading")
	}

	r.Resume()
	if published, _ := r.Refresh(context.Background()); !published {
		t.Fatal("expected refresh to work again after resume")
	}
}

func TestRefresher_LoadErrorLeavesSnapshotIntact(t *testing.T) {
	fail := false
	r := NewRefresher(func(ctx context.Context) (interface{}, error) {
		if fail {
			return nil, errors.New("load failed")
		}
		return "good", nil
	})

	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	fail = true
	if _, err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected load error to surface")
	}
	if r.Snapshot() != "good" {
		t.Fatalf("expected last good snapshot kept, got %v", r.Snapshot())
	}
}

func TestRefresher_StaleLoadCannotOverwriteNewer(t *testing.T) {
	// The first (slow) load is held until a second (fast) load has
	// published; the slow result must then be discarded.
	release := make(chan struct{})
	var mu sync.Mutex
	loads := 0

	r := NewRefresher(func(ctx context.Context) (interface{}, error) {
		mu.Lock()
		loads++
		n := loads
		mu.Unlock()
		if n == 1 {
			<-release
			return "stale", nil
		}
		return "fresh", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	firstPublished := false
	go func() {
		defer wg.Done()
		published, err := r.Refresh(context.Background())
		if err != nil {
			t.Errorf("slow refresh failed: %v", err)
		}
		firstPublished = published
	}()

	// Wait until the slow load is in flight before racing it.
	for {
		mu.Lock()
		inFlight := loads == 1
		mu.Unlock()
		if inFlight {
			break
		}
	}

	if published, err := r.Refresh(context.Background()); err != nil || !published {
		t.Fatalf("fast refresh should publish, got published=%t err=%v", published, err)
	}

	close(release)
	wg.Wait()

	if firstPublished {
		t.Fatal("expected stale load to be discarded")
	}
	if r.Snapshot() != "fresh" {
		t.Fatalf("expected fresh snapshot to win, got %v", r.Snapshot())
	}
}
