// Package types provides request, response and domain types shared across the CareerDesk API.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Role identifies the kind of authenticated principal. It is a closed set;
// anything outside RoleAdmin/RoleCounselor must be rejected at the boundary.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
)

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCounselor:
		return RoleCounselor, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCounselor:
		return true
	default:
		return false
	}
}

// Principal is the authenticated identity held for a session.
// The password is stripped before a principal is ever constructed.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// LoginRequest represents the login request. Role is an optional hint: empty
// means "try admin first, then counselor".
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role,omitempty" validate:"omitempty,oneof=admin counselor"`
	RememberMe bool   `json:"remember_me,omitempty"`
}

// LoginResponse represents the login response with the resolved principal and
// the session token.
type LoginResponse struct {
	Principal *Principal `json:"principal"`
	Token     string     `json:"token"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
