package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/farazahmedph003/gull-backend/internal/app"
)

// StreamChangesHandler serves the per-user change feed over SSE. The
// same events that go to the message broker are delivered here for
// browser clients; polling remains available as the fallback.
func (h *Handlers) StreamChangesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	changes, cancel := h.broker.Subscribe(user.ID)
	defer cancel()

	// Balance snapshots are pushed alongside change events so clients do
	// not need a follow-up fetch. The refresher keeps concurrent triggers
	// last-write-wins.
	balances := app.NewRefresher(func(ctx context.Context) (interface{}, error) {
		return h.service.GetBalance(ctx, user)
	})

	// Keep-alive comments stop proxies from closing the idle stream.
	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event, open := <-changes:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
			if event.Table == "entries" || event.Table == "user_balances" || event.Table == "admin_deductions" {
				published, err := balances.Refresh(r.Context())
				if err != nil || !published {
					continue
				}
				snapshot, err := json.Marshal(balances.Snapshot())
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: balance\ndata: %s\n\n", snapshot)
				flusher.Flush()
			}
		}
	}
}
