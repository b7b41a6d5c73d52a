/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all SQL for users, balances, projects, entries,
 * deductions, and the admin audit log.
 *
 * Every operation that moves money (entry create/update/delete, project
 * delete, top-up, deduction apply/reverse) runs inside a single database
 * transaction with the balance row locked FOR UPDATE, so a partial
 * failure can never leave the balance out of step with the entry rows.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - internal/domain: Domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository
// interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, btrim(email), display_name, btrim(username), password_hash, role, is_partner, is_anonymous, is_active, created_at, last_login_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.IsPartner,
		&user.IsAnonymous,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user together with a zeroed balance row.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (id, email, display_name, username, password_hash, role, is_partner, is_anonymous, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.IsPartner,
		user.IsAnonymous,
		user.IsActive,
	).Scan(&user.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO user_balances (user_id, balance, total_spent) VALUES ($1, 0, 0)`, user.ID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, userID))
}

// FindUserByIdentifier retrieves a user by username or email, case-insensitively.
func (r *PostgresRepository) FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(btrim(username)) = lower(btrim($1)) OR lower(btrim(email)) = lower(btrim($1))
	`
	return scanUser(r.db.QueryRow(ctx, query, identifier))
}

// UpdateUserProfile applies the provided profile fields and returns the
// updated user.
func (r *PostgresRepository) UpdateUserProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*domain.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    email = COALESCE($3, email)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, userID, req.DisplayName, req.Email))
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// TouchLastLogin stamps the user's last sign-in time.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users, newest first.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// SetUserActive toggles an account's active flag.
func (r *PostgresRepository) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, userID, active)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetBalance retrieves a user's balance record.
func (r *PostgresRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	var b domain.Balance
	query := `SELECT user_id, balance, total_spent, updated_at FROM user_balances WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.Balance, &b.TotalSpent, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}
	return &b, nil
}

// TopUpBalance credits a user's balance and appends the audit row
// atomically. A top-up never touches total_spent.
func (r *PostgresRepository) TopUpBalance(ctx context.Context, userID, adminID uuid.UUID, amount int64, notes string) (*domain.Balance, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var b domain.Balance
	query := `
		UPDATE user_balances
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, balance, total_spent, updated_at
	`
	err = tx.QueryRow(ctx, query, userID, amount).Scan(&b.UserID, &b.Balance, &b.TotalSpent, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBalanceNotFound
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO balance_transactions (id, user_id, admin_id, type, amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, adminID, domain.BalanceTxTopup, amount, notes)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBalanceTransactions returns the newest audit rows for a user.
func (r *PostgresRepository) ListBalanceTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.BalanceTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, admin_id, type, amount, notes, created_at
		FROM balance_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BalanceTransaction
	for rows.Next() {
		var t domain.BalanceTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AdminID, &t.Type, &t.Amount, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// CreateProject inserts a new project row.
func (r *PostgresRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, owner_user_id, name, entry_types, project_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		project.ID,
		project.OwnerUserID,
		project.Name,
		project.EntryTypes,
		project.ProjectDate,
	).Scan(&project.CreatedAt)
}

// FindProjectByID retrieves a project by its ID.
func (r *PostgresRepository) FindProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	query := `SELECT id, owner_user_id, name, entry_types, project_date, created_at FROM projects WHERE id = $1`
	err := r.db.QueryRow(ctx, query, projectID).Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.EntryTypes, &p.ProjectDate, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListProjectsByOwner returns a user's projects, newest first.
func (r *PostgresRepository) ListProjectsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	query := `
		SELECT id, owner_user_id, name, entry_types, project_date, created_at
		FROM projects
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OwnerUserID, &p.Name, &p.EntryTypes, &p.ProjectDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and its entries, refunding the summed
// entry totals to the owner's balance in the same transaction.
func (r *PostgresRepository) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT owner_user_id FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrProjectNotFound
		}
		return err
	}

	var refund int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(first_amount + second_amount), 0)
		FROM entries WHERE project_id = $1
	`, projectID).Scan(&refund)
	if err != nil {
		return err
	}

	if refund != 0 {
		// Removing entries is a refund of their summed totals.
		if err := lockBalanceAndAdjust(ctx, tx, ownerID, -refund, false); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM entries WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const entryColumns = `id, project_id, user_id, number, first_amount, second_amount, notes, entry_type, created_at, updated_at`

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(
		&e.ID,
		&e.ProjectID,
		&e.UserID,
		&e.Number,
		&e.FirstAmount,
		&e.SecondAmount,
		&e.Notes,
		&e.EntryType,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// lockBalanceAndAdjust applies the signed balance delta to a user's
// balance row under FOR UPDATE. delta is the change in entry total:
// balance decreases by delta, total_spent rises by delta clamped at zero.
func lockBalanceAndAdjust(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64, requireFunds bool) error {
	var b domain.Balance
	err := tx.QueryRow(ctx, `SELECT user_id, balance, total_spent FROM user_balances WHERE user_id = $1 FOR UPDATE`, userID).
		Scan(&b.UserID, &b.Balance, &b.TotalSpent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrBalanceNotFound
		}
		return err
	}
	if requireFunds && delta > 0 && b.Balance < delta {
		return ErrInsufficientFunds
	}

	b.ApplyDelta(delta)
	_, err = tx.Exec(ctx, `
		UPDATE user_balances
		SET balance = $2, total_spent = $3, updated_at = NOW()
		WHERE user_id = $1
	`, userID, b.Balance, b.TotalSpent)
	return err
}

// CreateEntry inserts an entry and debits the owner's balance by the
// entry total, atomically.
func (r *PostgresRepository) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockBalanceAndAdjust(ctx, tx, entry.UserID, entry.Total(), true); err != nil {
		return err
	}

	query := `
		INSERT INTO entries (id, project_id, user_id, number, first_amount, second_amount, notes, entry_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		entry.ID,
		entry.ProjectID,
		entry.UserID,
		entry.Number,
		entry.FirstAmount,
		entry.SecondAmount,
		entry.Notes,
		entry.EntryType,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindEntryByID retrieves an entry by its ID.
func (r *PostgresRepository) FindEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	return scanEntry(r.db.QueryRow(ctx, query, entryID))
}

// ListEntriesByProject returns a project's entries, oldest first.
func (r *PostgresRepository) ListEntriesByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE project_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateEntry applies field updates to an entry, adjusting the owner's
// balance by the change in total within the same transaction.
func (r *PostgresRepository) UpdateEntry(ctx context.Context, entryID uuid.UUID, req domain.UpdateEntryRequest) (*domain.Entry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1 FOR UPDATE`, entryID))
	if err != nil {
		return nil, err
	}

	next := *current
	if req.Number != nil {
		next.Number = *req.Number
	}
	if req.FirstAmount != nil {
		next.FirstAmount = *req.FirstAmount
	}
	if req.SecondAmount != nil {
		next.SecondAmount = *req.SecondAmount
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}

	delta := next.Total() - current.Total()
	if delta != 0 {
		if err := lockBalanceAndAdjust(ctx, tx, current.UserID, delta, true); err != nil {
			return nil, err
		}
	}

	updated, err := scanEntry(tx.QueryRow(ctx, `
		UPDATE entries
		SET number = $2, first_amount = $3, second_amount = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+entryColumns, entryID, next.Number, next.FirstAmount, next.SecondAmount, next.Notes))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEntry removes an entry and refunds its total to the owner's
// balance, atomically. Returns the deleted entry.
func (r *PostgresRepository) DeleteEntry(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entry, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1 FOR UPDATE`, entryID))
	if err != nil {
		return nil, err
	}

	// Deletion is a refund: newTotal = 0, so delta = -oldTotal.
	if err := lockBalanceAndAdjust(ctx, tx, entry.UserID, -entry.Total(), false); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1`, entryID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyDeduction reduces an entry's stored amounts and appends the
// deduction audit rows (admin_deductions plus a balance_transactions
// line for the entry owner's history), atomically. The entry's amounts
// can never go below zero; over-deduction is rejected.
func (r *PostgresRepository) ApplyDeduction(ctx context.Context, ded *domain.AdminDeduction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entry, err := scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1 FOR UPDATE`, ded.EntryID))
	if err != nil {
		return err
	}
	if ded.DeductedFirst > entry.FirstAmount || ded.DeductedSecond > entry.SecondAmount {
		return ErrInsufficientFunds
	}
	ded.EntryNumber = entry.Number

	_, err = tx.Exec(ctx, `
		UPDATE entries
		SET first_amount = first_amount - $2,
		    second_amount = second_amount - $3,
		    updated_at = NOW()
		WHERE id = $1
	`, ded.EntryID, ded.DeductedFirst, ded.DeductedSecond)
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(ded.Metadata)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO admin_deductions (id, entry_id, admin_id, entry_number, deducted_first, deducted_second, deduction_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, ded.ID, ded.EntryID, ded.AdminID, ded.EntryNumber, ded.DeductedFirst, ded.DeductedSecond, ded.DeductionType, metadata).Scan(&ded.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO balance_transactions (id, user_id, admin_id, type, amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), entry.UserID, ded.AdminID, domain.BalanceTxDeduction, ded.DeductedFirst+ded.DeductedSecond, ded.DeductionType)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const deductionColumns = `id, entry_id, admin_id, entry_number, deducted_first, deducted_second, deduction_type, metadata, created_at`

func scanDeduction(row pgx.Row) (*domain.AdminDeduction, error) {
	var d domain.AdminDeduction
	var metadata []byte
	err := row.Scan(
		&d.ID,
		&d.EntryID,
		&d.AdminID,
		&d.EntryNumber,
		&d.DeductedFirst,
		&d.DeductedSecond,
		&d.DeductionType,
		&metadata,
		&d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDeductionNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

// DeleteDeductions reverses and removes the given deduction records in
// one transaction. Each referenced entry gets its deducted amounts
// restored exactly, so deduct-then-delete round-trips to the original
// entry state. Entries deleted in the meantime are skipped.
func (r *PostgresRepository) DeleteDeductions(ctx context.Context, ids []uuid.UUID) ([]domain.AdminDeduction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reversed []domain.AdminDeduction
	for _, id := range ids {
		ded, err := scanDeduction(tx.QueryRow(ctx, `SELECT `+deductionColumns+` FROM admin_deductions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, ErrDeductionNotFound) && len(ids) > 1 {
				continue
			}
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			UPDATE entries
			SET first_amount = first_amount + $2,
			    second_amount = second_amount + $3,
			    updated_at = NOW()
			WHERE id = $1
		`, ded.EntryID, ded.DeductedFirst, ded.DeductedSecond)
		if err != nil {
			return nil, err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM admin_deductions WHERE id = $1`, id); err != nil {
			return nil, err
		}
		reversed = append(reversed, *ded)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return reversed, nil
}

// ListDeductions returns deduction records ordered by creation time,
// oldest first, ready for display grouping.
func (r *PostgresRepository) ListDeductions(ctx context.Context, limit int) ([]domain.AdminDeduction, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + deductionColumns + ` FROM admin_deductions ORDER BY created_at ASC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AdminDeduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// CreateAuditLogEntry appends a row to the admin audit log.
func (r *PostgresRepository) CreateAuditLogEntry(ctx context.Context, entry *domain.AuditLogEntry) error {
	query := `
		INSERT INTO admin_audit_log (id, admin_id, action, target_user_id, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, entry.ID, entry.AdminID, entry.Action, entry.TargetUserID, entry.Detail).Scan(&entry.CreatedAt)
}

// ListAuditLog returns the newest audit log rows.
func (r *PostgresRepository) ListAuditLog(ctx context.Context, limit int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, admin_id, action, target_user_id, detail, created_at
		FROM admin_audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AuditLogEntry
	for rows.Next() {
		var e domain.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetUserID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
