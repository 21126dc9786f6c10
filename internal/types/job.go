package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for plain dates (expiry dates arrive as
// dates, not timestamps, and are converted at the data layer).
const DateLayout = "2006-01-02"

// Employment type values.
const (
	EmploymentFullTime  = "Full-time"
	EmploymentPartTime  = "Part-time"
	EmploymentContract  = "Contract"
	EmploymentIntern    = "Internship"
	EmploymentTemporary = "Temporary"
)

// Experience level values.
const (
	ExperienceEntry     = "Entry-Level"
	ExperienceMid       = "Mid-Level"
	ExperienceSenior    = "Senior"
	ExperienceExecutive = "Executive"
)

// JobCategories is the closed category set accepted for postings.
var JobCategories = []string{
	"tech", "healthcare", "finance", "education", "marketing",
	"design", "sales", "engineering", "hospitality", "legal", "other",
}

// CreateJobRequest is the form-shaped input for creating a posting: flat
// highlight lists and a logo that is either an existing URL or raw bytes.
type CreateJobRequest struct {
	Title            string   `json:"title" validate:"required,min=1"`
	Company          string   `json:"company" validate:"required,min=1"`
	City             string   `json:"city,omitempty"`
	Country          string   `json:"country,omitempty"`
	Description      string   `json:"description" validate:"required,min=1"`
	EmploymentType   string   `json:"employment_type" validate:"required,oneof=Full-time Part-time Contract Internship Temporary"`
	Category         string   `json:"category" validate:"required,oneof=tech healthcare finance education marketing design sales engineering hospitality legal other"`
	ExperienceLevel  string   `json:"experience_level" validate:"required,oneof=Entry-Level Mid-Level Senior Executive"`
	Remote           bool     `json:"remote"`
	SalaryMin        float64  `json:"salary_min" validate:"gte=0"`
	SalaryMax        float64  `json:"salary_max" validate:"gte=0"`
	SalaryCurrency   string   `json:"salary_currency" validate:"required,len=3"`
	Qualifications   []string `json:"qualifications,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	ApplyLink        string   `json:"apply_link" validate:"required,url"`
	ExternalLink     string   `json:"external_link,omitempty" validate:"omitempty,url"`
	ExpiryDate       string   `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	PostedBy         string   `json:"posted_by,omitempty"`

	// Logo: either an existing URL, or raw bytes (base64 on the wire) plus
	// a filename to store them under.
	LogoURL      string `json:"logo_url,omitempty" validate:"omitempty,url"`
	LogoData     []byte `json:"logo_data,omitempty"`
	LogoFilename string `json:"logo_filename,omitempty"`
}

// Validate validates the CreateJobRequest, including the cross-field salary
// invariant the legacy schema left unchecked.
func (r *CreateJobRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.SalaryMin > r.SalaryMax {
		return fmt.Errorf("salary_min (%v) exceeds salary_max (%v)", r.SalaryMin, r.SalaryMax)
	}
	if len(r.LogoData) > 0 && r.LogoFilename == "" {
		return fmt.Errorf("logo_filename is required when logo_data is set")
	}
	return nil
}

// ParseExpiry converts the plain expiry date into the stored timestamp:
// midnight UTC of that date, so the posting expires as the day begins.
func (r *CreateJobRequest) ParseExpiry() (time.Time, error) {
	t, err := time.Parse(DateLayout, r.ExpiryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry_date: %w", err)
	}
	return t, nil
}

// JobPatch is a partial update where every field is a pointer: nil means
// "leave unchanged", a non-nil pointer to a zero value means "set to zero".
// This replaces the legacy "skip if falsy" update, which could never write a
// legitimate zero salary or empty string.
type JobPatch struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Company         *string  `json:"company,omitempty" validate:"omitempty,min=1"`
	City            *string  `json:"city,omitempty"`
	Country         *string  `json:"country,omitempty"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	EmploymentType  *string  `json:"employment_type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Internship Temporary"`
	Category        *string  `json:"category,omitempty" validate:"omitempty,oneof=tech healthcare finance education marketing design sales engineering hospitality legal other"`
	ExperienceLevel *string  `json:"experience_level,omitempty" validate:"omitempty,oneof=Entry-Level Mid-Level Senior Executive"`
	Remote          *bool    `json:"remote,omitempty"`
	SalaryMin       *float64 `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax       *float64 `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	SalaryCurrency  *string  `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	ApplyLink       *string  `json:"apply_link,omitempty" validate:"omitempty,url"`
	ExternalLink    *string  `json:"external_link,omitempty" validate:"omitempty,url"`
	ExpiryDate      *string  `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PostedBy        *string  `json:"posted_by,omitempty"`

	// Highlight lists merge into the stored structure field-by-field; an
	// absent list leaves the stored one intact.
	Qualifications   *[]string `json:"qualifications,omitempty"`
	Responsibilities *[]string `json:"responsibilities,omitempty"`
	Benefits         *[]string `json:"benefits,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`

	LogoURL      *string `json:"logo_url,omitempty" validate:"omitempty,url"`
	LogoData     []byte  `json:"logo_data,omitempty"`
	LogoFilename string  `json:"logo_filename,omitempty"`
}

// Validate validates the JobPatch.
func (p *JobPatch) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin > *p.SalaryMax {
		return fmt.Errorf("salary_min (%v) exceeds salary_max (%v)", *p.SalaryMin, *p.SalaryMax)
	}
	if len(p.LogoData) > 0 && p.LogoFilename == "" {
		return fmt.Errorf("logo_filename is required when logo_data is set")
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p *JobPatch) IsEmpty() bool {
	return p.Title == nil && p.Company == nil && p.City == nil && p.Country == nil &&
		p.Description == nil && p.EmploymentType == nil && p.Category == nil &&
		p.ExperienceLevel == nil && p.Remote == nil && p.SalaryMin == nil &&
		p.SalaryMax == nil && p.SalaryCurrency == nil && p.ApplyLink == nil &&
		p.ExternalLink == nil && p.ExpiryDate == nil && p.PostedBy == nil &&
		p.Qualifications == nil && p.Responsibilities == nil && p.Benefits == nil &&
		p.Tags == nil && p.LogoURL == nil && len(p.LogoData) == 0
}
