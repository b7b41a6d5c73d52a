/**
 * @description
 * This file defines the `Repository` interface: the contract for all data
 * access the GULL backend needs. Keeping the business logic behind an
 * interface decouples it from PostgreSQL and lets tests substitute stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: The service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/farazahmedph003/gull-backend/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username or email already taken")
	ErrProjectNotFound   = errors.New("project not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrBalanceNotFound   = errors.New("balance record not found")
	ErrDeductionNotFound = errors.New("deduction not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	// FindUserByIdentifier resolves a user by username or email (case-insensitive).
	FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*domain.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error

	// Balance methods
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Balance, error)
	// TopUpBalance credits the balance and appends the audit row in one transaction.
	TopUpBalance(ctx context.Context, userID, adminID uuid.UUID, amount int64, notes string) (*domain.Balance, error)
	ListBalanceTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.BalanceTransaction, error)

	// Project methods
	CreateProject(ctx context.Context, project *domain.Project) error
	FindProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error)
	// DeleteProject removes the project and its entries, refunding the
	// remaining entry totals to the owner's balance in one transaction.
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	// Entry methods. Every amount-changing operation adjusts the owner's
	// balance inside the same database transaction as the entry write.
	CreateEntry(ctx context.Context, entry *domain.Entry) error
	FindEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error)
	ListEntriesByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Entry, error)
	UpdateEntry(ctx context.Context, entryID uuid.UUID, req domain.UpdateEntryRequest) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error)

	// Deduction methods
	ApplyDeduction(ctx context.Context, ded *domain.AdminDeduction) error
	// DeleteDeductions reverses and removes the given deductions, restoring
	// the deducted amounts on every referenced entry.
	DeleteDeductions(ctx context.Context, ids []uuid.UUID) ([]domain.AdminDeduction, error)
	ListDeductions(ctx context.Context, limit int) ([]domain.AdminDeduction, error)

	// Audit log methods
	CreateAuditLogEntry(ctx context.Context, entry *domain.AuditLogEntry) error
	ListAuditLog(ctx context.Context, limit int) ([]domain.AuditLogEntry, error)
}
