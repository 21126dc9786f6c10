package db

import (
	"time"

	"github.com/google/uuid"
)

// Counselor represents a counselor profile
type Counselor struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never serialize to JSON
	PhotoURL        string    `json:"photo_url,omitempty"`
	Specialty       string    `json:"specialty,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateCounselorInput is used when creating a counselor profile. The
// password is already hashed by the caller.
type CreateCounselorInput struct {
	Name            string
	Email           string
	PasswordHash    string
	PhotoURL        string
	Specialty       string
	Bio             string
	ExperienceYears int
}

// CounselorUpdate is a partial update: nil fields are left unchanged.
type CounselorUpdate struct {
	Name            *string
	Email           *string
	PasswordHash    *string
	PhotoURL        *string
	Specialty       *string
	Bio             *string
	ExperienceYears *int
}
