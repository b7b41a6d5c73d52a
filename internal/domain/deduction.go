package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminDeduction maps to the `admin_deductions` table. It is an
// append-only audit record of an admin reducing an entry's amounts.
// Deleting a deduction restores the deducted amounts to the entry.
type AdminDeduction struct {
	ID             uuid.UUID              `json:"id"`
	EntryID        uuid.UUID              `json:"entry_id"`
	AdminID        uuid.UUID              `json:"admin_id"`
	EntryNumber    string                 `json:"entry_number"`
	DeductedFirst  int64                  `json:"deducted_first"`
	DeductedSecond int64                  `json:"deducted_second"`
	DeductionType  string                 `json:"deduction_type"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// DeductEntryRequest is the DTO for applying a deduction to an entry.
type DeductEntryRequest struct {
	DeductFirst   int64  `json:"deduct_first"`
	DeductSecond  int64  `json:"deduct_second"`
	DeductionType string `json:"deduction_type"`
}

// DeductionGroup is the presentation-layer clustering of deductions that
// happened close together in time (one admin action fanning out over
// several entries). Size-1 groups render as plain rows; larger groups
// carry a count badge and support bulk deletion.
type DeductionGroup struct {
	AnchorTime     time.Time   `json:"anchor_time"`
	AdminID        uuid.UUID   `json:"admin_id"`
	DeductedFirst  int64       `json:"deducted_first"`
	DeductedSecond int64       `json:"deducted_second"`
	EntryNumbers   []string    `json:"entry_numbers"`
	MemberIDs      []uuid.UUID `json:"member_ids"`
	Count          int         `json:"count"`
}

// TopUpRequest is the DTO for an admin balance top-up.
type TopUpRequest struct {
	Amount int64  `json:"amount"`
	Notes  string `json:"notes"`
}

// AuditLogEntry is one row of the `admin_audit_log` table.
type AuditLogEntry struct {
	ID           uuid.UUID  `json:"id"`
	AdminID      uuid.UUID  `json:"admin_id"`
	Action       string     `json:"action"`
	TargetUserID *uuid.UUID `json:"target_user_id,omitempty"`
	Detail       string     `json:"detail"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Audit actions recorded by the session manager and admin operations.
const (
	AuditImpersonationBegin = "impersonation_begin"
	AuditImpersonationExit  = "impersonation_exit"
	AuditBalanceTopUp       = "balance_topup"
	AuditEntryDeduction     = "entry_deduction"
	AuditDeductionReversal  = "deduction_reversal"
)
