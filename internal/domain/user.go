/**
 * @description
 * This file defines the user-facing identity models for the GULL backend.
 * Users own projects and entries; admins additionally manage balances,
 * deductions, and may impersonate other users through the session manager.
 *
 * @notes
 * - `PasswordHash` is never serialized; the JSON tag strips it from every
 *   API response that embeds a User.
 * - Anonymous users are real rows with `is_anonymous = true` so that their
 *   projects and balances behave exactly like registered users'.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored in the users.role column.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User maps to the `users` table and represents one account identity.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"` // 'user' or 'admin'
	IsPartner    bool       `json:"is_partner"`
	IsAnonymous  bool       `json:"is_anonymous"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SignUpRequest is the DTO for account creation.
type SignUpRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// SignInRequest is the DTO for authentication. Identifier accepts either
// a username or an email address.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// SessionView is what the API returns for the current session. While an
// admin impersonates another user, `User` is the impersonation target and
// `OriginalAdmin` carries the admin's own identity for the banner and the
// exit control.
type SessionView struct {
	Token           string `json:"token,omitempty"`
	User            *User  `json:"user"`
	IsImpersonating bool   `json:"is_impersonating"`
	OriginalAdmin   *User  `json:"original_admin,omitempty"`
}
