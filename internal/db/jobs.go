package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, title, company, city, country, description,
	employment_type, category, experience_level, remote,
	salary_min, salary_max, salary_currency, highlights, tags, coordinates,
	apply_link, external_link, logo_url, expiry_date, posted_at, posted_by,
	applications, views, popularity, is_popular`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var highlightsJSON, tagsJSON, coordsJSON []byte

	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.City, &j.Country, &j.Description,
		&j.EmploymentType, &j.Category, &j.ExperienceLevel, &j.Remote,
		&j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency, &highlightsJSON, &tagsJSON, &coordsJSON,
		&j.ApplyLink, &j.ExternalLink, &j.LogoURL, &j.ExpiryDate, &j.PostedAt, &j.PostedBy,
		&j.Applications, &j.Views, &j.Popularity, &j.IsPopular)
	if err != nil {
		return nil, err
	}

	// Parse JSONB fields
	if highlightsJSON != nil {
		if err := json.Unmarshal(highlightsJSON, &j.Highlights); err != nil {
			return nil, fmt.Errorf("failed to parse highlights: %w", err)
		}
	}
	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &j.Tags); err != nil {
			return nil, fmt.Errorf("failed to parse tags: %w", err)
		}
	}
	if coordsJSON != nil {
		j.Coordinates = &GeoPoint{}
		if err := json.Unmarshal(coordsJSON, j.Coordinates); err != nil {
			return nil, fmt.Errorf("failed to parse coordinates: %w", err)
		}
	}

	return &j, nil
}

// ListJobsOptions contains filters and pagination for listing postings.
// Every present filter becomes a predicate; absent ones are ignored.
type ListJobsOptions struct {
	Category        string
	EmploymentType  string
	ExperienceLevel string
	Remote          *bool
	Popular         *bool
	Tag             string
	Status          string // JobStatusActive, JobStatusExpired or empty

	PageSize int     // default 10, capped at 100
	Cursor   *Cursor // continue strictly after this sort key
}

// DefaultPageSize is used when ListJobsOptions.PageSize is unset.
const DefaultPageSize = 10

// ListJobs lists postings ordered by posted_at descending with keyset
// pagination. It returns the page and an opaque cursor for the next page;
// the cursor is empty when the page came up short.
//
// The active/expired predicates are evaluated against the clock at query
// time, so a posting can flip between calls; there is no transactional
// guarantee across pages.
func (db *DB) ListJobs(ctx context.Context, opts ListJobsOptions) ([]Job, string, error) {
	var conditions []string
	var args []any
	argNum := 1

	appendCond := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, argNum))
		args = append(args, value)
		argNum++
	}

	if opts.Category != "" {
		appendCond("category = $%d", opts.Category)
	}
	if opts.EmploymentType != "" {
		appendCond("employment_type = $%d", opts.EmploymentType)
	}
	if opts.ExperienceLevel != "" {
		appendCond("experience_level = $%d", opts.ExperienceLevel)
	}
	if opts.Remote != nil {
		appendCond("remote = $%d", *opts.Remote)
	}
	if opts.Popular != nil {
		appendCond("is_popular = $%d", *opts.Popular)
	}
	if opts.Tag != "" {
		tagJSON, err := json.Marshal([]string{opts.Tag})
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal tag filter: %w", err)
		}
		appendCond("tags @> $%d::jsonb", tagJSON)
	}

	switch opts.Status {
	case JobStatusActive:
		conditions = append(conditions, "expiry_date > NOW()")
	case JobStatusExpired:
		conditions = append(conditions, "expiry_date <= NOW()")
	}

	if opts.Cursor != nil {
		conditions = append(conditions,
			fmt.Sprintf("(posted_at, id) < ($%d, $%d)", argNum, argNum+1))
		args = append(args, opts.Cursor.PostedAt, opts.Cursor.ID)
		argNum += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := opts.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > 100 {
		limit = 100
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT %s FROM jobs %s ORDER BY posted_at DESC, id DESC LIMIT $%d`,
		jobColumns, whereClause, argNum,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to list jobs: %w", err)
	}

	// A full page gets a continuation cursor; a short page is the last one.
	nextCursor := ""
	if len(jobs) == limit {
		last := jobs[len(jobs)-1]
		nextCursor, err = Cursor{PostedAt: last.PostedAt, ID: last.ID}.Encode()
		if err != nil {
			return nil, "", err
		}
	}

	return jobs, nextCursor, nil
}

// GetJob retrieves a single posting. Returns nil when the ID is unknown.
// View counting is the caller's concern; the read itself has no side effects.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns), id)

	j, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// CreateJob inserts a new posting. The store assigns the ID and posting
// timestamp, zeroes all counters and defaults is_popular to false. Raw logo
// bytes are stored under the new ID and the resulting URL substituted, in
// the same transaction as the insert.
func (db *DB) CreateJob(ctx context.Context, input *CreateJobInput) (*Job, error) {
	id := uuid.New()
	now := time.Now()

	logoURL := input.LogoURL
	if input.Logo != nil {
		logoURL = db.logoURL(id, input.Logo.Filename)
	}

	// Placeholder until real geocoding exists.
	var coords *GeoPoint
	if input.City != "" && input.Country != "" {
		coords = &GeoPoint{}
	}

	highlightsJSON, err := json.Marshal(input.Highlights)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal highlights: %w", err)
	}
	var tagsJSON, coordsJSON []byte
	if len(input.Tags) > 0 {
		if tagsJSON, err = json.Marshal(input.Tags); err != nil {
			return nil, fmt.Errorf("failed to marshal tags: %w", err)
		}
	}
	if coords != nil {
		if coordsJSON, err = json.Marshal(coords); err != nil {
			return nil, fmt.Errorf("failed to marshal coordinates: %w", err)
		}
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, title, company, city, country, description,
		                   employment_type, category, experience_level, remote,
		                   salary_min, salary_max, salary_currency, highlights, tags, coordinates,
		                   apply_link, external_link, logo_url, expiry_date, posted_at, posted_by,
		                   applications, views, popularity, is_popular)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		         $17, $18, $19, $20, $21, $22, 0, 0, 0, FALSE)`,
		id, input.Title, input.Company, input.City, input.Country, input.Description,
		input.EmploymentType, input.Category, input.ExperienceLevel, input.Remote,
		input.SalaryMin, input.SalaryMax, input.SalaryCurrency, highlightsJSON, tagsJSON, coordsJSON,
		input.ApplyLink, nullIfEmpty(input.ExternalLink), nullIfEmpty(logoURL), input.ExpiryDate, now, input.PostedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if input.Logo != nil {
		if err := saveLogoTx(ctx, tx, id, input.Logo); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return db.GetJob(ctx, id)
}

// UpdateJob applies a partial update. Only present fields change; present
// highlight lists are merged into the stored structure so absent lists
// survive. The returned record is read back from the store after the write.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, update *JobUpdate) (*Job, error) {
	if update.HasHighlights() {
		var highlightsJSON []byte
		err := db.pool.QueryRow(ctx,
			`SELECT highlights FROM jobs WHERE id = $1`, id).Scan(&highlightsJSON)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to read highlights: %w", err)
		}

		var existing Highlights
		if highlightsJSON != nil {
			if err := json.Unmarshal(highlightsJSON, &existing); err != nil {
				return nil, fmt.Errorf("failed to parse highlights: %w", err)
			}
		}
		merged := update.MergeHighlights(existing)
		mergedJSON, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal highlights: %w", err)
		}
		update.mergedHighlights = mergedJSON
	}

	if update.Logo != nil {
		logoURL := db.logoURL(id, update.Logo.Filename)
		update.LogoURL = &logoURL
	}

	setClauses, args, err := buildJobUpdateSet(update)
	if err != nil {
		return nil, err
	}
	if len(setClauses) == 0 {
		return db.requireJob(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), len(args))

	// The row UPDATE and the logo blob commit or roll back together; the
	// UPDATE runs first so a missing posting is a clean not-found before
	// anything touches job_logos.
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}

	if update.Logo != nil {
		if err := saveLogoTx(ctx, tx, id, update.Logo); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return db.requireJob(ctx, id)
}

// buildJobUpdateSet turns present fields into SET clauses with positional
// args. Highlight lists are folded into a single pre-merged JSONB value.
func buildJobUpdateSet(update *JobUpdate) ([]string, []any, error) {
	var setClauses []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Company != nil {
		set("company", *update.Company)
	}
	if update.City != nil {
		set("city", *update.City)
	}
	if update.Country != nil {
		set("country", *update.Country)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.EmploymentType != nil {
		set("employment_type", *update.EmploymentType)
	}
	if update.Category != nil {
		set("category", *update.Category)
	}
	if update.ExperienceLevel != nil {
		set("experience_level", *update.ExperienceLevel)
	}
	if update.Remote != nil {
		set("remote", *update.Remote)
	}
	if update.SalaryMin != nil {
		set("salary_min", *update.SalaryMin)
	}
	if update.SalaryMax != nil {
		set("salary_max", *update.SalaryMax)
	}
	if update.SalaryCurrency != nil {
		set("salary_currency", *update.SalaryCurrency)
	}
	if update.mergedHighlights != nil {
		set("highlights", update.mergedHighlights)
	}
	if update.Tags != nil {
		tagsJSON, err := json.Marshal(*update.Tags)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal tags: %w", err)
		}
		set("tags", tagsJSON)
	}
	if update.ApplyLink != nil {
		set("apply_link", *update.ApplyLink)
	}
	if update.ExternalLink != nil {
		set("external_link", nullIfEmpty(*update.ExternalLink))
	}
	if update.LogoURL != nil {
		set("logo_url", nullIfEmpty(*update.LogoURL))
	}
	if update.ExpiryDate != nil {
		set("expiry_date", *update.ExpiryDate)
	}
	if update.PostedBy != nil {
		set("posted_by", *update.PostedBy)
	}

	return setClauses, args, nil
}

// requireJob reads a posting that must exist; absence is an ErrNotFound.
func (db *DB) requireJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := db.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return j, nil
}

// DeleteJob removes a posting; logo blobs cascade. A second delete of the
// same ID is a clean not-found, never a partial state.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// AddJobCounters adds deltas to a posting's counters and recomputes the
// popular flag from the resulting popularity score.
func (db *DB) AddJobCounters(ctx context.Context, id uuid.UUID, views, applications, popularity int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE jobs SET views = views + $2,
		                 applications = applications + $3,
		                 popularity = popularity + $4,
		                 is_popular = (popularity + $4) >= $5
		 WHERE id = $1`,
		id, views, applications, popularity, PopularityThreshold)
	if err != nil {
		return fmt.Errorf("failed to add job counters: %w", err)
	}
	return nil
}

// SearchJobs loads the whole collection and filters in process: a
// case-insensitive substring match over title, description, company, city,
// country and tags, with title matches ordered first. O(collection size) per
// call and unpaginated; acceptable only while the collection stays small.
func (db *DB) SearchJobs(ctx context.Context, text string) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM jobs ORDER BY posted_at DESC, id DESC`, jobColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	return FilterJobsByText(jobs, text), nil
}

// FilterJobsByText partitions jobs into title matches followed by
// other-field matches, preserving relative order within each partition.
func FilterJobsByText(jobs []Job, text string) []Job {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return jobs
	}

	var titleMatches, otherMatches []Job
	for _, j := range jobs {
		switch {
		case strings.Contains(strings.ToLower(j.Title), needle):
			titleMatches = append(titleMatches, j)
		case jobFieldsMatch(&j, needle):
			otherMatches = append(otherMatches, j)
		}
	}
	return append(titleMatches, otherMatches...)
}

func jobFieldsMatch(j *Job, needle string) bool {
	for _, field := range []string{j.Description, j.Company, j.City, j.Country} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	for _, tag := range j.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// nullIfEmpty maps "" to SQL NULL for nullable text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
