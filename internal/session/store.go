/**
 * @description
 * This package provides the durable session storage port for the GULL
 * backend. Session records and impersonation records are stored under
 * separate keys so that cold-load restoration can check for persisted
 * impersonation data before falling back to the normal session, and so
 * that clearing one never touches the other.
 *
 * Two implementations are provided: Redis for production and an
 * in-memory map for tests and offline mode.
 */

package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// ErrNotFound is returned when no record exists for a session id.
var ErrNotFound = errors.New("session record not found")

// Record is one persisted authenticated session. User is only populated
// for locally-synthesized users (offline mode), which have no database
// row to resolve against.
type Record struct {
	SessionID string       `json:"session_id"`
	UserID    uuid.UUID    `json:"user_id"`
	User      *domain.User `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Impersonation is the persisted impersonation state attached to an
// admin's session. It survives reload independently of the session
// record itself.
type Impersonation struct {
	SessionID       string    `json:"session_id"`
	TargetUserID    uuid.UUID `json:"target_user_id"`
	OriginalAdminID uuid.UUID `json:"original_admin_id"`
	StartedAt       time.Time `json:"started_at"`
}

// Store is the durable key-value port for session state.
type Store interface {
	SaveSession(ctx context.Context, rec Record) error
	GetSession(ctx context.Context, sessionID string) (*Record, error)
	DeleteSession(ctx context.Context, sessionID string) error

	SaveImpersonation(ctx context.Context, imp Impersonation) error
	GetImpersonation(ctx context.Context, sessionID string) (*Impersonation, error)
	DeleteImpersonation(ctx context.Context, sessionID string) error
}
