package domain

import (
	"time"

	"github.com/google/uuid"
)

// Change operations carried by row-change events.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// ChangeEvent is published after every mutating operation so that
// clients subscribed to a table (filtered by user id) can refresh.
// Routing key shape: gull.changes.<table>.<user_id>.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	UserID    uuid.UUID `json:"user_id"`
	RowID     uuid.UUID `json:"row_id"`
	Timestamp time.Time `json:"timestamp"`
}
