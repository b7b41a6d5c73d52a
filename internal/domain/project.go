/**
 * @description
 * This file defines the ledger domain models: projects, entries, balances,
 * deductions, and the audit records that back the admin office. These
 * structs map directly onto their database tables and double as the API
 * response shapes.
 *
 * @notes
 * - Amounts are stored as `int64` whole units to avoid floating-point
 *   drift in balance arithmetic.
 * - An entry's "total" is always `FirstAmount + SecondAmount`; every
 *   balance adjustment is derived from the change in that total.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry types a project may accept.
const (
	EntryTypeOpen   = "open"
	EntryTypeAkra   = "akra"
	EntryTypeRing   = "ring"
	EntryTypePacket = "packet"
)

// ValidEntryType reports whether t names a known entry type.
func ValidEntryType(t string) bool {
	switch t {
	case EntryTypeOpen, EntryTypeAkra, EntryTypeRing, EntryTypePacket:
		return true
	}
	return false
}

// Project maps to the `projects` table. EntryTypes is the set of entry
// types the project accepts, stored as a text array.
type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Name        string    `json:"name"`
	EntryTypes  []string  `json:"entry_types"`
	ProjectDate time.Time `json:"project_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProjectRequest is the DTO for creating a project.
type CreateProjectRequest struct {
	Name        string   `json:"name"`
	EntryTypes  []string `json:"entry_types"`
	ProjectDate string   `json:"project_date"` // YYYY-MM-DD
}

// Entry maps to the `entries` table and is the monetary unit of work.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	UserID       uuid.UUID `json:"user_id"`
	Number       string    `json:"number"`
	FirstAmount  int64     `json:"first_amount"`
	SecondAmount int64     `json:"second_amount"`
	Notes        string    `json:"notes"`
	EntryType    string    `json:"entry_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Total returns the combined monetary value of the entry.
func (e *Entry) Total() int64 {
	return e.FirstAmount + e.SecondAmount
}

// CreateEntryRequest is the DTO for adding an entry to a project.
type CreateEntryRequest struct {
	Number       string `json:"number"`
	FirstAmount  int64  `json:"first_amount"`
	SecondAmount int64  `json:"second_amount"`
	Notes        string `json:"notes"`
	EntryType    string `json:"entry_type"`
}

// UpdateEntryRequest carries the mutable entry fields.
type UpdateEntryRequest struct {
	Number       *string `json:"number,omitempty"`
	FirstAmount  *int64  `json:"first_amount,omitempty"`
	SecondAmount *int64  `json:"second_amount,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Balance maps to the `user_balances` table. TotalSpent is clamped at
// zero by every write path.
type Balance struct {
	UserID     uuid.UUID `json:"user_id"`
	Balance    int64     `json:"balance"`
	TotalSpent int64     `json:"total_spent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Balance transaction types recorded in the append-only audit ledger.
const (
	BalanceTxTopup     = "topup"
	BalanceTxDeduction = "deduction"
)

// BalanceTransaction is one append-only row in `balance_transactions`,
// written for admin top-ups and deductions.
type BalanceTransaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AdminID   uuid.UUID `json:"admin_id"`
	Type      string    `json:"type"` // 'topup' or 'deduction'
	Amount    int64     `json:"amount"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
