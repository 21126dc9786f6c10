// Package server provides the HTTP REST API for the CareerDesk admin dashboard.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/db"
)

// ErrInvalidCredentials indicates invalid login credentials. The message is
// deliberately identical for unknown email and wrong password.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrEmailAlreadyExists indicates the email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrJobNotFound indicates the requested posting does not exist
type ErrJobNotFound struct {
	ID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}

// ErrCounselorNotFound indicates the requested counselor does not exist
type ErrCounselorNotFound struct {
	ID uuid.UUID
}

func (e *ErrCounselorNotFound) Error() string {
	return fmt.Sprintf("counselor not found: %s", e.ID)
}

// ErrForbidden indicates the principal's role does not allow the operation
type ErrForbidden struct{}

func (e *ErrForbidden) Error() string {
	return "forbidden"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrForbidden:
		return http.StatusForbidden
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrJobNotFound, *ErrCounselorNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	}
	if errors.Is(err, db.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
