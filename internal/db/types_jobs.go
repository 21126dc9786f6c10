package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status values derived from the expiry date.
const (
	JobStatusActive  = "active"
	JobStatusExpired = "expired"
)

// PopularityThreshold is the popularity score at or above which a posting is
// flagged popular. An application click adds ApplicationPopularityBoost.
const (
	PopularityThreshold        = 100
	ApplicationPopularityBoost = 10
)

// Highlights holds the nested qualification/responsibility/benefit lists
// attached to a posting.
type Highlights struct {
	Qualifications   []string `json:"qualifications,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Job represents a job posting as stored.
type Job struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	City            string     `json:"city,omitempty"`
	Country         string     `json:"country,omitempty"`
	Description     string     `json:"description"`
	EmploymentType  string     `json:"employment_type"`
	Category        string     `json:"category"`
	ExperienceLevel string     `json:"experience_level"`
	Remote          bool       `json:"remote"`
	SalaryMin       float64    `json:"salary_min"`
	SalaryMax       float64    `json:"salary_max"`
	SalaryCurrency  string     `json:"salary_currency"`
	Highlights      Highlights `json:"highlights"`
	Tags            []string   `json:"tags,omitempty"`
	Coordinates     *GeoPoint  `json:"coordinates,omitempty"`
	ApplyLink       string     `json:"apply_link"`
	ExternalLink    *string    `json:"external_link,omitempty"`
	LogoURL         *string    `json:"logo_url,omitempty"`
	ExpiryDate      time.Time  `json:"expiry_date"`
	PostedAt        time.Time  `json:"posted_at"`
	PostedBy        string     `json:"posted_by,omitempty"`
	Applications    int        `json:"applications"`
	Views           int        `json:"views"`
	Popularity      int        `json:"popularity"`
	IsPopular       bool       `json:"is_popular"`
}

// IsActive reports whether the posting's expiry date is still in the future
// at the given instant.
func (j *Job) IsActive(now time.Time) bool {
	return j.ExpiryDate.After(now)
}

// Status returns "active" or "expired" as of the given instant.
func (j *Job) Status(now time.Time) string {
	if j.IsActive(now) {
		return JobStatusActive
	}
	return JobStatusExpired
}

// LogoUpload carries raw logo bytes destined for blob storage.
type LogoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateJobInput is used when creating a new posting. The store assigns the
// ID, posting timestamp and counters.
type CreateJobInput struct {
	Title           string
	Company         string
	City            string
	Country         string
	Description     string
	EmploymentType  string
	Category        string
	ExperienceLevel string
	Remote          bool
	SalaryMin       float64
	SalaryMax       float64
	SalaryCurrency  string
	Highlights      Highlights
	Tags            []string
	ApplyLink       string
	ExternalLink    string
	LogoURL         string      // pre-existing logo URL, used as-is
	Logo            *LogoUpload // raw logo bytes; stored and URL substituted
	ExpiryDate      time.Time
	PostedBy        string
}

// JobUpdate is a partial update: nil fields are left unchanged. Present
// highlight lists merge into the stored structure; the other two lists
// survive untouched.
type JobUpdate struct {
	Title            *string
	Company          *string
	City             *string
	Country          *string
	Description      *string
	EmploymentType   *string
	Category         *string
	ExperienceLevel  *string
	Remote           *bool
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   *string
	Qualifications   *[]string
	Responsibilities *[]string
	Benefits         *[]string
	Tags             *[]string
	ApplyLink        *string
	ExternalLink     *string
	LogoURL          *string
	Logo             *LogoUpload
	ExpiryDate       *time.Time
	PostedBy         *string

	// mergedHighlights is the pre-merged JSONB payload computed by UpdateJob
	// when any highlight list is present.
	mergedHighlights []byte
}

// HasHighlights reports whether any highlight list is present in the update.
func (u *JobUpdate) HasHighlights() bool {
	return u.Qualifications != nil || u.Responsibilities != nil || u.Benefits != nil
}

// MergeHighlights applies the update's present lists onto existing
// highlights, preserving absent ones.
func (u *JobUpdate) MergeHighlights(existing Highlights) Highlights {
	merged := existing
	if u.Qualifications != nil {
		merged.Qualifications = *u.Qualifications
	}
	if u.Responsibilities != nil {
		merged.Responsibilities = *u.Responsibilities
	}
	if u.Benefits != nil {
		merged.Benefits = *u.Benefits
	}
	return merged
}
