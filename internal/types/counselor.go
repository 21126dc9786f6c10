package types

import "github.com/go-playground/validator/v10"

// CreateCounselorRequest represents the request to create a counselor profile.
type CreateCounselorRequest struct {
	Name            string `json:"name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PhotoURL        string `json:"photo_url,omitempty" validate:"omitempty,url"`
	Specialty       string `json:"specialty,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty" validate:"gte=0"`
}

// CounselorPatch is a partial update for a counselor profile. Password
// changes go through the same patch; the hash is computed at the service
// layer.
type CounselorPatch struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=8"`
	PhotoURL        *string `json:"photo_url,omitempty" validate:"omitempty,url"`
	Specialty       *string `json:"specialty,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty" validate:"omitempty,gte=0"`
}

// Validate validates the CreateCounselorRequest using the validator.
func (r *CreateCounselorRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CounselorPatch using the validator.
func (p *CounselorPatch) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
