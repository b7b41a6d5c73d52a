/**
 * @description
 * This file contains the core ledger logic: project and entry CRUD with
 * balance bookkeeping, admin top-ups and deductions, and the audit trail.
 * The repository performs each balance adjustment and its entry write in
 * one database transaction; this layer handles authorization, validation,
 * and change-event publication.
 *
 * @dependencies
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/events: Row-change event publication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
	"github.com/farazahmedph003/gull-backend/internal/store"
	"github.com/farazahmedph003/gull-backend/pkg/events"
)

// Service provides the core ledger business logic.
type Service struct {
	repo        store.Repository
	publisher   events.Publisher
	groupWindow time.Duration
}

// NewService creates a new ledger service instance. groupWindow at or
// below zero falls back to DefaultGroupingThreshold.
func NewService(repo store.Repository, publisher events.Publisher, groupWindow time.Duration) *Service {
	if groupWindow <= 0 {
		groupWindow = DefaultGroupingThreshold
	}
	return &Service{repo: repo, publisher: publisher, groupWindow: groupWindow}
}

func (s *Service) publishChange(ctx context.Context, table, op string, userID, rowID uuid.UUID) {
	event := domain.ChangeEvent{
		Table:     table,
		Op:        op,
		UserID:    userID,
		RowID:     rowID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		log.Printf("level=warn component=service msg=\"change event publish failed\" table=%s op=%s err=%v", table, op, err)
	}
}

// CreateProject creates a project owned by the acting user.
func (s *Service) CreateProject(ctx context.Context, owner *domain.User, req domain.CreateProjectRequest) (*domain.Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if len(req.EntryTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one entry type is required", ErrValidation)
	}
	for _, t := range req.EntryTypes {
		if !domain.ValidEntryType(t) {
			return nil, fmt.Errorf("%w: unknown entry type %q", ErrValidation, t)
		}
	}

	projectDate := time.Now()
	if req.ProjectDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ProjectDate)
		if err != nil {
			return nil, fmt.Errorf("%w: project_date must be YYYY-MM-DD", ErrValidation)
		}
		projectDate = parsed
	}

	project := &domain.Project{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		Name:        req.Name,
		EntryTypes:  req.EntryTypes,
		ProjectDate: projectDate,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "projects", domain.ChangeInsert, owner.ID, project.ID)
	return project, nil
}

// ListProjects returns the acting user's projects.
func (s *Service) ListProjects(ctx context.Context, owner *domain.User) ([]domain.Project, error) {
	return s.repo.ListProjectsByOwner(ctx, owner.ID)
}

// GetProject returns a project the acting user may see. Admins may view
// any project; other users only their own.
func (s *Service) GetProject(ctx context.Context, actor *domain.User, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.repo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerUserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return project, nil
}

// DeleteProject removes a project with its entries, refunding the entry
// totals. Allowed for the owner or an admin.
func (s *Service) DeleteProject(ctx context.Context, actor *domain.User, projectID uuid.UUID) error {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	s.publishChange(ctx, "projects", domain.ChangeDelete, project.OwnerUserID, projectID)
	s.publishChange(ctx, "user_balances", domain.ChangeUpdate, project.OwnerUserID, project.OwnerUserID)
	return nil
}

// CreateEntry adds an entry to a project, debiting the project owner's
// balance by the entry total.
func (s *Service) CreateEntry(ctx context.Context, actor *domain.User, projectID uuid.UUID, req domain.CreateEntryRequest) (*domain.Entry, error) {
	project, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if req.Number == "" {
		return nil, fmt.Errorf("%w: entry number is required", ErrValidation)
	}
	if req.FirstAmount < 0 || req.SecondAmount < 0 {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if !domain.ValidEntryType(req.EntryType) {
		return nil, fmt.Errorf("%w: unknown entry type %q", ErrValidation, req.EntryType)
	}
	accepted := false
	for _, t := range project.EntryTypes {
		if t == req.EntryType {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, fmt.Errorf("%w: project does not accept %q entries", ErrValidation, req.EntryType)
	}

	entry := &domain.Entry{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		UserID:       project.OwnerUserID,
		Number:       req.Number,
		FirstAmount:  req.FirstAmount,
		SecondAmount: req.SecondAmount,
		Notes:        req.Notes,
		EntryType:    req.EntryType,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "entries", domain.ChangeInsert, entry.UserID, entry.ID)
	s.publishChange(ctx, "user_balances", domain.ChangeUpdate, entry.UserID, entry.UserID)
	return entry, nil
}

// ListEntries returns a project's entries for an authorized actor.
func (s *Service) ListEntries(ctx context.Context, actor *domain.User, projectID uuid.UUID) ([]domain.Entry, error) {
	if _, err := s.GetProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListEntriesByProject(ctx, projectID)
}

func (s *Service) authorizeEntry(ctx context.Context, actor *domain.User, entryID uuid.UUID) (*domain.Entry, error) {
	entry, err := s.repo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return entry, nil
}

// UpdateEntry edits an entry's fields; the owner's balance moves by the
// change in total.
func (s *Service) UpdateEntry(ctx context.Context, actor *domain.User, entryID uuid.UUID, req domain.UpdateEntryRequest) (*domain.Entry, error) {
	if _, err := s.authorizeEntry(ctx, actor, entryID); err != nil {
		return nil, err
	}
	if (req.FirstAmount != nil && *req.FirstAmount < 0) || (req.SecondAmount != nil && *req.SecondAmount < 0) {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}

	updated, err := s.repo.UpdateEntry(ctx, entryID, req)
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, "entries", domain.ChangeUpdate, updated.UserID, updated.ID)
	s.publishChange(ctx, "user_balances", domain.ChangeUpdate, updated.UserID, updated.UserID)
	return updated, nil
}

// DeleteEntry removes an entry, refunding its total.
func (s *Service) DeleteEntry(ctx context.Context, actor *domain.User, entryID uuid.UUID) error {
	if _, err := s.authorizeEntry(ctx, actor, entryID); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteEntry(ctx, entryID)
	if err != nil {
		return err
	}

	s.publishChange(ctx, "entries", domain.ChangeDelete, deleted.UserID, deleted.ID)
	s.publishChange(ctx, "user_balances", domain.ChangeUpdate, deleted.UserID, deleted.UserID)
	return nil
}

// GetBalance returns the acting user's balance record.
func (s *Service) GetBalance(ctx context.Context, user *domain.User) (*domain.Balance, error) {
	return s.repo.GetBalance(ctx, user.ID)
}

// ListBalanceHistory returns the acting user's balance audit rows.
func (s *Service) ListBalanceHistory(ctx context.Context, user *domain.User, limit int) ([]domain.BalanceTransaction, error) {
	return s.repo.ListBalanceTransactions(ctx, user.ID, limit)
}

// TopUpBalance credits a user's balance. Admin only.
func (s *Service) TopUpBalance(ctx context.Context, admin *domain.User, userID uuid.UUID, req domain.TopUpRequest) (*domain.Balance, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: top-up amount must be positive", ErrValidation)
	}

	balance, err := s.repo.TopUpBalance(ctx, userID, admin.ID, req.Amount, req.Notes)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, admin.ID, domain.AuditBalanceTopUp, &userID, fmt.Sprintf("topped up %d", req.Amount))
	s.publishChange(ctx, "user_balances", domain.ChangeUpdate, userID, userID)
	return balance, nil
}

// DeductEntry reduces an entry's amounts and records the deduction.
// Admin only.
func (s *Service) DeductEntry(ctx context.Context, admin *domain.User, entryID uuid.UUID, req domain.DeductEntryRequest) (*domain.AdminDeduction, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	if req.DeductFirst < 0 || req.DeductSecond < 0 {
		return nil, fmt.Errorf("%w: deduction amounts must not be negative", ErrValidation)
	}
	if req.DeductFirst == 0 && req.DeductSecond == 0 {
		return nil, fmt.Errorf("%w: deduction must reduce at least one amount", ErrValidation)
	}

	ded := &domain.AdminDeduction{
		ID:             uuid.New(),
		EntryID:        entryID,
		AdminID:        admin.ID,
		DeductedFirst:  req.DeductFirst,
		DeductedSecond: req.DeductSecond,
		DeductionType:  req.DeductionType,
	}
	if err := s.repo.ApplyDeduction(ctx, ded); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindEntryByID(ctx, entryID)
	if err == nil {
		s.publishChange(ctx, "entries", domain.ChangeUpdate, entry.UserID, entry.ID)
	}
	s.audit(ctx, admin.ID, domain.AuditEntryDeduction, nil,
		fmt.Sprintf("deducted %d/%d from entry %s", req.DeductFirst, req.DeductSecond, ded.EntryNumber))
	return ded, nil
}

// ListDeductionGroups returns deduction records clustered for display.
// Admin only.
func (s *Service) ListDeductionGroups(ctx context.Context, admin *domain.User, limit int) ([]domain.DeductionGroup, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	records, err := s.repo.ListDeductions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return GroupDeductions(records, s.groupWindow), nil
}

// ReverseDeductions deletes deduction records, restoring the deducted
// amounts on every referenced entry. Used for single rows and for whole
// display groups. Admin only.
func (s *Service) ReverseDeductions(ctx context.Context, admin *domain.User, ids []uuid.UUID) error {
	if !admin.IsAdmin() {
		return ErrNotAdmin
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no deduction ids given", ErrValidation)
	}

	reversed, err := s.repo.DeleteDeductions(ctx, ids)
	if err != nil {
		return err
	}
	if len(reversed) == 0 {
		return store.ErrDeductionNotFound
	}

	for _, ded := range reversed {
		entry, err := s.repo.FindEntryByID(ctx, ded.EntryID)
		if err != nil {
			if !errors.Is(err, store.ErrEntryNotFound) {
				log.Printf("level=warn component=service msg=\"reversed entry lookup failed\" entry_id=%s err=%v", ded.EntryID, err)
			}
			continue
		}
		s.publishChange(ctx, "entries", domain.ChangeUpdate, entry.UserID, entry.ID)
	}
	s.audit(ctx, admin.ID, domain.AuditDeductionReversal, nil, fmt.Sprintf("reversed %d deduction(s)", len(reversed)))
	return nil
}

// ListUsers returns all users. Admin only.
func (s *Service) ListUsers(ctx context.Context, admin *domain.User) ([]domain.User, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return s.repo.ListUsers(ctx)
}

// SetUserActive toggles an account's active flag. Admin only.
func (s *Service) SetUserActive(ctx context.Context, admin *domain.User, userID uuid.UUID, active bool) error {
	if !admin.IsAdmin() {
		return ErrNotAdmin
	}
	return s.repo.SetUserActive(ctx, userID, active)
}

// ListAuditLog returns the newest admin audit rows. Admin only.
func (s *Service) ListAuditLog(ctx context.Context, admin *domain.User, limit int) ([]domain.AuditLogEntry, error) {
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return s.repo.ListAuditLog(ctx, limit)
}

func (s *Service) audit(ctx context.Context, adminID uuid.UUID, action string, targetID *uuid.UUID, detail string) {
	entry := &domain.AuditLogEntry{
		ID:           uuid.New(),
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetID,
		Detail:       detail,
	}
	if err := s.repo.CreateAuditLogEntry(ctx, entry); err != nil {
		log.Printf("level=warn component=service msg=\"audit write failed\" action=%s err=%v", action, err)
	}
}
