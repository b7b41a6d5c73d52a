/**
 * @description
 * This file implements the session and impersonation state machine. A
 * session moves between three states: anonymous (no record), authenticated
 * (session record only), and impersonating (session record plus a
 * separately persisted impersonation record).
 *
 * Key behaviors:
 * - Impersonation state is persisted independently of the session, so it
 *   survives reloads and is checked FIRST on restore. A stale record
 *   (target user deleted) is discarded and restore degrades to the plain
 *   session rather than failing.
 * - While impersonating, the effective user is the target; the original
 *   admin stays resolvable from the session record and is the identity
 *   used for the exit transition and audit rows.
 * - Starting an impersonation while one is active replaces the target and
 *   keeps the original admin.
 * - Offline mode accepts the configured override credential pair as a
 *   local admin and any other pair as a local guest; those users live
 *   only in the session record, never in the database.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Bearer token issuance.
 * - golang.org/x/crypto/bcrypt: Password hashing.
 * - internal/session: The durable session storage port.
 * - internal/store: User persistence and audit logging.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farazahmedph003/gull-backend/internal/domain"
	"github.com/farazahmedph003/gull-backend/internal/session"
	"github.com/farazahmedph003/gull-backend/internal/store"
)

// SessionManager owns authentication, session persistence, and the
// impersonation state machine.
type SessionManager struct {
	repo     store.Repository
	sessions session.Store

	signingKey []byte
	tokenTTL   time.Duration

	offlineMode      bool
	overrideUsername string
	overridePassword string
}

// NewSessionManager creates a SessionManager. tokenTTL at or below zero
// defaults to 30 days.
func NewSessionManager(repo store.Repository, sessions session.Store, signingKey string, tokenTTL time.Duration) *SessionManager {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &SessionManager{
		repo:       repo,
		sessions:   sessions,
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// EnableOfflineMode switches sign-in to the local fallback path: the
// override pair authenticates as admin, anything else as a guest.
func (m *SessionManager) EnableOfflineMode(overrideUsername, overridePassword string) {
	m.offlineMode = true
	m.overrideUsername = overrideUsername
	m.overridePassword = overridePassword
}

// SigningKey exposes the token signing key for the HTTP middleware.
func (m *SessionManager) SigningKey() []byte {
	return m.signingKey
}

func (m *SessionManager) issueToken(sessionID string, userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(m.tokenTTL).Unix(),
	})
	return token.SignedString(m.signingKey)
}

func (m *SessionManager) startSession(ctx context.Context, user *domain.User, local bool) (*domain.SessionView, error) {
	rec := session.Record{
		SessionID: uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if local {
		rec.User = user
	}
	if err := m.sessions.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := m.issueToken(rec.SessionID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.SessionView{Token: token, User: user}, nil
}

// SignUp registers a new user and opens a session for it.
func (m *SessionManager) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SessionView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		DisplayName:  displayName,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := m.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("level=info component=session msg=\"user signed up\" user_id=%s username=%s", user.ID, user.Username)

	return m.startSession(ctx, user, false)
}

// SignIn authenticates a username-or-email plus password pair. Failures
// never touch previously persisted session data.
func (m *SessionManager) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SessionView, error) {
	if m.offlineMode {
		return m.signInOffline(ctx, req)
	}

	user, err := m.repo.FindUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := m.repo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("level=warn component=session msg=\"last login update failed\" user_id=%s err=%v", user.ID, err)
	}
	log.Printf("level=info component=session msg=\"user signed in\" user_id=%s", user.ID)

	return m.startSession(ctx, user, false)
}

// signInOffline is the fallback path used when the backend is configured
// as unavailable. The session carries the user snapshot itself.
func (m *SessionManager) signInOffline(ctx context.Context, req domain.SignInRequest) (*domain.SessionView, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, ErrInvalidCredentials
	}

	role := domain.RoleUser
	if identifier == m.overrideUsername && req.Password == m.overridePassword {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		ID:          uuid.New(),
		Username:    identifier,
		DisplayName: identifier,
		Role:        role,
		IsAnonymous: role != domain.RoleAdmin,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	log.Printf("level=info component=session msg=\"offline sign-in\" username=%s role=%s", identifier, role)
	return m.startSession(ctx, user, true)
}

// SignInAnonymous creates a throwaway user row and a session for it.
func (m *SessionManager) SignInAnonymous(ctx context.Context) (*domain.SessionView, error) {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	user := &domain.User{
		ID:          uuid.New(),
		Username:    "guest_" + suffix,
		DisplayName: "Guest",
		Role:        domain.RoleUser,
		IsAnonymous: true,
		IsActive:    true,
	}
	if err := m.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return m.startSession(ctx, user, false)
}

// SignOut tears down the session and any active impersonation. It is
// idempotent: signing out an already-absent session succeeds.
func (m *SessionManager) SignOut(ctx context.Context, sessionID string) error {
	if err := m.sessions.DeleteImpersonation(ctx, sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

// resolveSessionUser returns the session's own user (the original admin
// while impersonating), preferring the local snapshot for offline users.
func (m *SessionManager) resolveSessionUser(ctx context.Context, rec *session.Record) (*domain.User, error) {
	if rec.User != nil {
		return rec.User, nil
	}
	user, err := m.repo.FindUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

// Current restores the session view for a session id. Persisted
// impersonation data is checked before the plain session; a stale record
// whose target no longer resolves is discarded instead of failing the
// restore.
func (m *SessionManager) Current(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	rec, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	imp, err := m.sessions.GetImpersonation(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}
	if imp != nil {
		target, terr := m.repo.FindUserByID(ctx, imp.TargetUserID)
		if terr == nil {
			admin, aerr := m.resolveSessionUser(ctx, rec)
			if aerr != nil {
				return nil, aerr
			}
			return &domain.SessionView{User: target, IsImpersonating: true, OriginalAdmin: admin}, nil
		}
		if !errors.Is(terr, store.ErrUserNotFound) {
			return nil, terr
		}
		// The persisted target is gone; drop the stale record and fall
		// back to normal session restoration.
		log.Printf("level=warn component=session msg=\"stale impersonation discarded\" session_id=%s target_id=%s", sessionID, imp.TargetUserID)
		if derr := m.sessions.DeleteImpersonation(ctx, sessionID); derr != nil {
			log.Printf("level=warn component=session msg=\"stale impersonation cleanup failed\" session_id=%s err=%v", sessionID, derr)
		}
	}

	user, err := m.resolveSessionUser(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &domain.SessionView{User: user}, nil
}

// EffectiveUser resolves the acting identity for a session: the
// impersonation target while impersonating, the session user otherwise.
func (m *SessionManager) EffectiveUser(ctx context.Context, sessionID string) (*domain.User, error) {
	view, err := m.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view.User, nil
}

// BeginImpersonation switches an admin's session to act as the target
// user. The target profile must resolve; otherwise the session is left
// unchanged. An active impersonation is replaced, keeping the original
// admin.
func (m *SessionManager) BeginImpersonation(ctx context.Context, sessionID string, targetID uuid.UUID) (*domain.SessionView, error) {
	rec, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	admin, err := m.resolveSessionUser(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}

	target, err := m.repo.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	imp := session.Impersonation{
		SessionID:       sessionID,
		TargetUserID:    target.ID,
		OriginalAdminID: admin.ID,
		StartedAt:       time.Now(),
	}
	if err := m.sessions.SaveImpersonation(ctx, imp); err != nil {
		return nil, fmt.Errorf("failed to persist impersonation: %w", err)
	}

	m.audit(ctx, admin.ID, domain.AuditImpersonationBegin, &target.ID, fmt.Sprintf("impersonating %s", target.Username))
	log.Printf("level=info component=session msg=\"impersonation started\" admin_id=%s target_id=%s", admin.ID, target.ID)

	return &domain.SessionView{User: target, IsImpersonating: true, OriginalAdmin: admin}, nil
}

// ExitImpersonation restores the original admin as the acting identity.
// Without an active impersonation it is a no-op returning the current
// session view.
func (m *SessionManager) ExitImpersonation(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	imp, err := m.sessions.GetImpersonation(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return m.Current(ctx, sessionID)
		}
		return nil, err
	}

	if err := m.sessions.DeleteImpersonation(ctx, sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	m.audit(ctx, imp.OriginalAdminID, domain.AuditImpersonationExit, &imp.TargetUserID, "impersonation ended")
	log.Printf("level=info component=session msg=\"impersonation ended\" admin_id=%s target_id=%s", imp.OriginalAdminID, imp.TargetUserID)

	return m.Current(ctx, sessionID)
}

// UpdateProfile applies profile changes to the acting user.
func (m *SessionManager) UpdateProfile(ctx context.Context, sessionID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	acting, err := m.EffectiveUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.repo.UpdateUserProfile(ctx, acting.ID, req)
}

func (m *SessionManager) audit(ctx context.Context, adminID uuid.UUID, action string, targetID *uuid.UUID, detail string) {
	entry := &domain.AuditLogEntry{
		ID:           uuid.New(),
		AdminID:      adminID,
		Action:       action,
		TargetUserID: targetID,
		Detail:       detail,
	}
	if err := m.repo.CreateAuditLogEntry(ctx, entry); err != nil {
		log.Printf("level=warn component=session msg=\"audit write failed\" action=%s err=%v", action, err)
	}
}
