package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LogoPathPrefix is the storage path convention for posting logos.
const LogoPathPrefix = "job-logos"

// JobLogo is a stored logo blob, addressed by job ID and filename.
type JobLogo struct {
	JobID       uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

// logoURL builds the public URL for a logo stored under the path convention
// job-logos/{jobID}/{filename}.
func (db *DB) logoURL(jobID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", db.PublicBaseURL, LogoPathPrefix, jobID, filename)
}

const saveLogoSQL = `INSERT INTO job_logos (job_id, filename, content_type, data)
	 VALUES ($1, $2, $3, $4)
	 ON CONFLICT (job_id, filename) DO UPDATE SET content_type = $3, data = $4, created_at = NOW()`

// saveLogoTx stores a logo within the transaction wrapping a create or
// update, so the blob never outlives a failed row write.
func saveLogoTx(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, logo *LogoUpload) error {
	_, err := tx.Exec(ctx, saveLogoSQL, jobID, logo.Filename, logoContentType(logo), logo.Data)
	if err != nil {
		return fmt.Errorf("failed to save job logo: %w", err)
	}
	return nil
}

// GetJobLogo retrieves a logo blob. Returns nil when absent.
func (db *DB) GetJobLogo(ctx context.Context, jobID uuid.UUID, filename string) (*JobLogo, error) {
	logo := JobLogo{JobID: jobID, Filename: filename}
	err := db.pool.QueryRow(ctx,
		`SELECT content_type, data FROM job_logos WHERE job_id = $1 AND filename = $2`,
		jobID, filename,
	).Scan(&logo.ContentType, &logo.Data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job logo: %w", err)
	}
	return &logo, nil
}

func logoContentType(logo *LogoUpload) string {
	if logo.ContentType != "" {
		return logo.ContentType
	}
	return "application/octet-stream"
}
