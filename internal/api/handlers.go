/**
 * @description
 * This file contains the HTTP handlers for the user-facing API: auth and
 * session operations, projects, entries, and balances. Handlers parse
 * requests, call the session manager or ledger service, and map domain
 * errors onto HTTP status codes.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/app"
	"github.com/farazahmedph003/gull-backend/internal/domain"
	"github.com/farazahmedph003/gull-backend/internal/store"
	"github.com/farazahmedph003/gull-backend/pkg/events"
)

// Handlers holds the session manager, ledger service, and SSE broker.
type Handlers struct {
	sessions *app.SessionManager
	service  *app.Service
	broker   *events.Broker
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *app.SessionManager, service *app.Service, broker *events.Broker) *Handlers {
	return &Handlers{sessions: sessions, service: service, broker: broker}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
		}
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors onto HTTP status codes. Unknown
// errors become 500 with a generic message.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, app.ErrAccountInactive):
		h.writeError(w, http.StatusForbidden, "Account is inactive")
	case errors.Is(err, app.ErrSessionNotFound):
		h.writeError(w, http.StatusUnauthorized, "Session expired or not found")
	case errors.Is(err, app.ErrNotAdmin), errors.Is(err, app.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "Not permitted")
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrEntryNotFound),
		errors.Is(err, store.ErrBalanceNotFound),
		errors.Is(err, store.ErrDeductionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUsernameTaken):
		h.writeError(w, http.StatusConflict, "Username or email already taken")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusUnprocessableEntity, "Insufficient balance")
	case errors.Is(err, app.ErrBackendUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "Backend unavailable")
	default:
		log.Printf("level=error component=api msg=\"unhandled error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// sessionID pulls the authenticated session id out of the context.
func (h *Handlers) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := GetSessionID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get session from context")
		return "", false
	}
	return sessionID, true
}

// actingUser resolves the effective user for the request (the
// impersonation target while an admin impersonates).
func (h *Handlers) actingUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return nil, false
	}
	user, err := h.sessions.EffectiveUser(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return nil, false
	}
	return user, true
}

func urlUUID(r *http.Request, param string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, param))
}

// SignUpHandler handles account creation.
func (h *Handlers) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.sessions.SignUp(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, view)
}

// SignInHandler handles username/email + password authentication.
func (h *Handlers) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.sessions.SignIn(r.Context(), req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=signin outcome=reject identifier=%s err=%v", req.Identifier, err)
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// AnonymousSignInHandler creates a guest session.
func (h *Handlers) AnonymousSignInHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.SignInAnonymous(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, view)
}

// SignOutHandler tears down the current session. Idempotent.
func (h *Handlers) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.SignOut(r.Context(), sessionID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// SessionHandler restores the current session view (cold load).
func (h *Handlers) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.Current(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// UpdateProfileHandler applies profile changes to the acting user.
func (h *Handlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.sessions.UpdateProfile(r.Context(), sessionID, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

type impersonateRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// ImpersonateHandler switches an admin session to act as another user.
func (h *Handlers) ImpersonateHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	view, err := h.sessions.BeginImpersonation(r.Context(), sessionID, req.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// ExitImpersonationHandler restores the original admin session.
func (h *Handlers) ExitImpersonationHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.ExitImpersonation(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// ListProjectsHandler returns the acting user's projects.
func (h *Handlers) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	projects, err := h.service.ListProjects(r.Context(), user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, projects)
}

// CreateProjectHandler creates a project for the acting user.
func (h *Handlers) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, err := h.service.CreateProject(r.Context(), user, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, project)
}

// GetProjectHandler returns one project.
func (h *Handlers) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	projectID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	project, err := h.service.GetProject(r.Context(), user, projectID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, project)
}

// DeleteProjectHandler removes a project and refunds its entries.
func (h *Handlers) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	projectID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	if err := h.service.DeleteProject(r.Context(), user, projectID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListEntriesHandler returns a project's entries.
func (h *Handlers) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	projectID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	entries, err := h.service.ListEntries(r.Context(), user, projectID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// CreateEntryHandler adds an entry to a project.
func (h *Handlers) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	projectID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	var req domain.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), user, projectID, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntryHandler edits an entry.
func (h *Handlers) UpdateEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	entryID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}
	var req domain.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry, err := h.service.UpdateEntry(r.Context(), user, entryID, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// DeleteEntryHandler removes an entry and refunds its total.
func (h *Handlers) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	entryID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}
	if err := h.service.DeleteEntry(r.Context(), user, entryID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BalanceHandler returns the acting user's balance.
func (h *Handlers) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	balance, err := h.service.GetBalance(r.Context(), user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balance)
}

// BalanceHistoryHandler returns the acting user's balance audit rows.
func (h *Handlers) BalanceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.service.ListBalanceHistory(r.Context(), user, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}
