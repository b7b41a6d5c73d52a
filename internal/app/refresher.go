/**
 * @description
 * This file implements the snapshot refresher that backs the change feed.
 * Periodic polling and row-change notifications both funnel into the same
 * Refresh call, which must be safe to invoke while a previous refresh is
 * still in flight: a generation counter gives last-write-wins on the
 * published snapshot, so a slow stale load can never overwrite a newer
 * one. A suppression flag lets callers pause refreshes while an edit is
 * in progress, mirroring the modal-open guard in the web client.
 */

package app

import (
	"context"
	"sync"
)

// LoadFunc fetches a fresh snapshot. It runs outside the refresher's
// lock and may be slow.
type LoadFunc func(ctx context.Context) (interface{}, error)

// Refresher serializes snapshot publication for concurrent refresh
// triggers. Refreshes are idempotent and reentrant-safe.
type Refresher struct {
	load LoadFunc

	mu         sync.Mutex
	generation uint64
	published  uint64
	snapshot   interface{}
	suppressed bool
}

// NewRefresher creates a Refresher around the given load function.
func NewRefresher(load LoadFunc) *Refresher {
	return &Refresher{load: load}
}

// Suppress pauses refreshes. Triggers while suppressed are dropped.
func (r *Refresher) Suppress() {
	r.mu.Lock()
	r.suppressed = true
	r.mu.Unlock()
}

// Resume re-enables refreshes.
func (r *Refresher) Resume() {
	r.mu.Lock()
	r.suppressed = false
	r.mu.Unlock()
}

// Refresh loads a fresh snapshot and publishes it unless a newer load
// already finished. Returns true when the snapshot was published.
func (r *Refresher) Refresh(ctx context.Context) (bool, error) {
	r.mu.Lock()
	if r.suppressed {
		r.mu.Unlock()
		return false, nil
	}
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	snapshot, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A later-started load that already landed wins.
	if gen < r.published {
		return false, nil
	}
	r.published = gen
	r.snapshot = snapshot
	return true, nil
}

// Snapshot returns the last published snapshot, or nil before the first
// successful refresh.
func (r *Refresher) Snapshot() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}
