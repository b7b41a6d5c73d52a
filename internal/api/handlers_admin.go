/**
 * @description
 * This file contains the HTTP handlers for the admin back office: user
 * management, balance top-ups, entry deductions, grouped deduction
 * display with single and bulk reversal, and the audit log.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// ListUsersHandler returns all users for the admin office.
func (h *Handlers) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	users, err := h.service.ListUsers(r.Context(), admin)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetUserActiveHandler toggles an account's active flag.
func (h *Handlers) SetUserActiveHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	userID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.SetUserActive(r.Context(), admin, userID, req.Active); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// TopUpHandler credits a user's balance.
func (h *Handlers) TopUpHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	userID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req domain.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	balance, err := h.service.TopUpBalance(r.Context(), admin, userID, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balance)
}

// DeductEntryHandler reduces an entry's amounts and records a deduction.
func (h *Handlers) DeductEntryHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	entryID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}
	var req domain.DeductEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ded, err := h.service.DeductEntry(r.Context(), admin, entryID, req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ded)
}

// ListDeductionGroupsHandler returns deductions clustered for display.
func (h *Handlers) ListDeductionGroupsHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	groups, err := h.service.ListDeductionGroups(r.Context(), admin, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

// DeleteDeductionHandler reverses a single deduction.
func (h *Handlers) DeleteDeductionHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	dedID, err := urlUUID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid deduction id")
		return
	}
	if err := h.service.ReverseDeductions(r.Context(), admin, []uuid.UUID{dedID}); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reversed"})
}

type deleteGroupRequest struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// DeleteDeductionGroupHandler reverses every member of a display group.
func (h *Handlers) DeleteDeductionGroupHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	var req deleteGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.ReverseDeductions(r.Context(), admin, req.MemberIDs); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"reversed": len(req.MemberIDs)})
}

// AuditLogHandler returns the newest admin audit rows.
func (h *Handlers) AuditLogHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	log, err := h.service.ListAuditLog(r.Context(), admin, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, log)
}
