package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farazahmedph003/gull-backend/internal/domain"
	"github.com/farazahmedph003/gull-backend/internal/session"
	"github.com/farazahmedph003/gull-backend/internal/store"
)

type sessionRepoStub struct {
	store.Repository

	users        map[uuid.UUID]*domain.User
	byIdentifier map[string]*domain.User
	auditActions []string
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{
		users:        make(map[uuid.UUID]*domain.User),
		byIdentifier: make(map[string]*domain.User),
	}
}

func (s *sessionRepoStub) addUser(user *domain.User) {
	s.users[user.ID] = user
	s.byIdentifier[user.Username] = user
}

func (s *sessionRepoStub) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *sessionRepoStub) FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, ok := s.byIdentifier[identifier]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *sessionRepoStub) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (s *sessionRepoStub) CreateAuditLogEntry(ctx context.Context, entry *domain.AuditLogEntry) error {
	s.auditActions = append(s.auditActions, entry.Action)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	return string(hash)
}

func adminUser(t *testing.T) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		Username:     "boss",
		DisplayName:  "Boss",
		PasswordHash: hashPassword(t, "secret1"),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
}

func signIn(t *testing.T, m *SessionManager, username, password string) (*domain.SessionView, string) {
	t.Helper()
	view, err := m.SignIn(context.Background(), domain.SignInRequest{Identifier: username, Password: password})
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	sessionID := sessionIDFromToken(t, m, view.Token)
	return view, sessionID
}

// sessionIDFromToken round-trips the issued token through the same
// parsing the HTTP middleware performs.
func sessionIDFromToken(t *testing.T, m *SessionManager, token string) string {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return m.SigningKey(), nil
	})
	if err != nil {
		t.Fatalf("token parse failed: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		t.Fatal("expected sid claim in issued token")
	}
	return sessionID
}

func TestImpersonation_BeginAndExitRestoresAdmin(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	target := &domain.User{ID: uuid.New(), Username: "worker", Role: domain.RoleUser, IsActive: true}
	repo.addUser(admin)
	repo.addUser(target)

	sessions := session.NewMemoryStore()
	m := NewSessionManager(repo, sessions, "test-key", time.Hour)
	_, sessionID := signIn(t, m, "boss", "secret1")

	view, err := m.BeginImpersonation(context.Background(), sessionID, target.ID)
	if err != nil {
		t.Fatalf("begin impersonation failed: %v", err)
	}
	if !view.IsImpersonating || view.User.ID != target.ID || view.OriginalAdmin.ID != admin.ID {
		t.Fatalf("expected impersonating view of target with original admin, got %+v", view)
	}

	restored, err := m.ExitImpersonation(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("exit impersonation failed: %v", err)
	}
	if restored.IsImpersonating || restored.User.ID != admin.ID {
		t.Fatalf("expected admin session restored, got %+v", restored)
	}

	if _, err := sessions.GetImpersonation(context.Background(), sessionID); !errors.Is(err, session.ErrNotFound) {
		t.Fatal("expected persisted impersonation to be cleared on exit")
	}
	if len(repo.auditActions) != 2 ||
		repo.auditActions[0] != domain.AuditImpersonationBegin ||
		repo.auditActions[1] != domain.AuditImpersonationExit {
		t.Fatalf("expected begin and exit audit rows, got %v", repo.auditActions)
	}
}

func TestImpersonation_MissingTargetLeavesSessionUnchanged(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	repo.addUser(admin)

	sessions := session.NewMemoryStore()
	m := NewSessionManager(repo, sessions, "test-key", time.Hour)
	_, sessionID := signIn(t, m, "boss", "secret1")

	_, err := m.BeginImpersonation(context.Background(), sessionID, uuid.New())
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected user-not-found error, got %v", err)
	}

	view, err := m.Current(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("session restore failed: %v", err)
	}
	if view.IsImpersonating || view.User.ID != admin.ID {
		t.Fatalf("expected admin session untouched, got %+v", view)
	}
}

func TestImpersonation_NonAdminRejected(t *testing.T) {
	repo := newSessionRepoStub()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "worker",
		PasswordHash: hashPassword(t, "secret1"),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	target := &domain.User{ID: uuid.New(), Username: "other", Role: domain.RoleUser, IsActive: true}
	repo.addUser(user)
	repo.addUser(target)

	m := NewSessionManager(repo, session.NewMemoryStore(), "test-key", time.Hour)
	_, sessionID := signIn(t, m, "worker", "secret1")

	if _, err := m.BeginImpersonation(context.Background(), sessionID, target.ID); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected admin requirement error, got %v", err)
	}
}

func TestImpersonation_ReplaceTargetKeepsOriginalAdmin(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	first := &domain.User{ID: uuid.New(), Username: "first", Role: domain.RoleUser, IsActive: true}
	second := &domain.User{ID: uuid.New(), Username: "second", Role: domain.RoleUser, IsActive: true}
	repo.addUser(admin)
	repo.addUser(first)
	repo.addUser(second)

	m := NewSessionManager(repo, session.NewMemoryStore(), "test-key", time.Hour)
	_, sessionID := signIn(t, m, "boss", "secret1")

	if _, err := m.BeginImpersonation(context.Background(), sessionID, first.ID); err != nil {
		t.Fatalf("first impersonation failed: %v", err)
	}
	view, err := m.BeginImpersonation(context.Background(), sessionID, second.ID)
	if err != nil {
		t.Fatalf("second impersonation failed: %v", err)
	}
	if view.User.ID != second.ID || view.OriginalAdmin.ID != admin.ID {
		t.Fatalf("expected replaced target with original admin kept, got %+v", view)
	}

	restored, err := m.ExitImpersonation(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("exit failed: %v", err)
	}
	if restored.User.ID != admin.ID {
		t.Fatalf("expected one exit to land back on the admin, got %+v", restored)
	}
}

func TestColdLoadRestore_StaleImpersonationFallsBack(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	repo.addUser(admin)

	sessions := session.NewMemoryStore()
	m := NewSessionManager(repo, sessions, "test-key", time.Hour)
	_, sessionID := signIn(t, m, "boss", "secret1")

	// Persist impersonation state pointing at a user that no longer exists.
	if err := sessions.SaveImpersonation(context.Background(), session.Impersonation{
		SessionID:       sessionID,
		TargetUserID:    uuid.New(),
		OriginalAdminID: admin.ID,
		StartedAt:       time.Now(),
	}); err != nil {
		t.Fatalf("save impersonation failed: %v", err)
	}

	view, err := m.Current(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("expected restore to degrade gracefully, got %v", err)
	}
	if view.IsImpersonating || view.User.ID != admin.ID {
		t.Fatalf("expected plain admin session after stale fallback, got %+v", view)
	}
	if _, err := sessions.GetImpersonation(context.Background(), sessionID); !errors.Is(err, session.ErrNotFound) {
		t.Fatal("expected stale impersonation record to be discarded")
	}
}

func TestSignOut_Idempotent(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	repo.addUser(admin)

	m := NewSessionManager(repo, session.NewMemoryStore(), "test-key", time.Hour)
	_, sessionID := signIn(t, m, "boss", "secret1")

	if err := m.SignOut(context.Background(), sessionID); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if err := m.SignOut(context.Background(), sessionID); err != nil {
		t.Fatalf("second sign out should be a no-op, got %v", err)
	}
	if _, err := m.Current(context.Background(), sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session-not-found after sign out, got %v", err)
	}
}

func TestSignIn_WrongPasswordRejected(t *testing.T) {
	repo := newSessionRepoStub()
	admin := adminUser(t)
	repo.addUser(admin)

	m := NewSessionManager(repo, session.NewMemoryStore(), "test-key", time.Hour)
	_, err := m.SignIn(context.Background(), domain.SignInRequest{Identifier: "boss", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestSignIn_InactiveAccountRejected(t *testing.T) {
	repo := newSessionRepoStub()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "dormant",
		PasswordHash: hashPassword(t, "secret1"),
		Role:         domain.RoleUser,
		IsActive:     false,
	}
	repo.addUser(user)

	m := NewSessionManager(repo, session.NewMemoryStore(), "test-key", time.Hour)
	_, err := m.SignIn(context.Background(), domain.SignInRequest{Identifier: "dormant", Password: "secret1"})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected inactive account error, got %v", err)
	}
}

func TestOfflineSignIn_OverridePairIsAdminOthersAreGuests(t *testing.T) {
	m := NewSessionManager(newSessionRepoStub(), session.NewMemoryStore(), "test-key", time.Hour)
	m.EnableOfflineMode("root", "override")

	adminView, err := m.SignIn(context.Background(), domain.SignInRequest{Identifier: "root", Password: "override"})
	if err != nil {
		t.Fatalf("offline admin sign-in failed: %v", err)
	}
	if adminView.User.Role != domain.RoleAdmin {
		t.Fatalf("expected override pair to yield admin, got role %q", adminView.User.Role)
	}

	guestView, err := m.SignIn(context.Background(), domain.SignInRequest{Identifier: "anyone", Password: "anything"})
	if err != nil {
		t.Fatalf("offline guest sign-in failed: %v", err)
	}
	if guestView.User.Role != domain.RoleUser || !guestView.User.IsAnonymous {
		t.Fatalf("expected guest-equivalent local user, got %+v", guestView.User)
	}

	// Offline sessions restore from their stored snapshot, no database needed.
	sessionID := sessionIDFromToken(t, m, guestView.Token)
	restored, err := m.Current(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("offline session restore failed: %v", err)
	}
	if restored.User.Username != "anyone" {
		t.Fatalf("expected restored offline user, got %+v", restored.User)
	}
}
