package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const counselorColumns = `id, name, email, password_hash, photo_url,
	specialty, bio, experience_years, created_at, updated_at`

func scanCounselor(row rowScanner) (*Counselor, error) {
	var c Counselor
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.PhotoURL,
		&c.Specialty, &c.Bio, &c.ExperienceYears, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCounselorByID retrieves a counselor profile. Returns nil when absent.
func (db *DB) GetCounselorByID(ctx context.Context, id uuid.UUID) (*Counselor, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM counselors WHERE id = $1`, counselorColumns), id)

	c, err := scanCounselor(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get counselor: %w", err)
	}
	return c, nil
}

// GetCounselorByEmail retrieves a counselor by email (case-insensitive).
// Returns nil when absent.
func (db *DB) GetCounselorByEmail(ctx context.Context, email string) (*Counselor, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM counselors WHERE LOWER(email) = LOWER($1)`, counselorColumns),
		email)

	c, err := scanCounselor(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get counselor by email: %w", err)
	}
	return c, nil
}

// CheckCounselorEmailExists reports whether a counselor with the email is
// already registered.
func (db *DB) CheckCounselorEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM counselors WHERE LOWER(email) = LOWER($1))`,
		email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check counselor email: %w", err)
	}
	return exists, nil
}

// CreateCounselor inserts a new counselor profile and returns it.
func (db *DB) CreateCounselor(ctx context.Context, input *CreateCounselorInput) (*Counselor, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO counselors (id, name, email, password_hash, photo_url,
		                                     specialty, bio, experience_years)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING %s`, counselorColumns),
		uuid.New(), input.Name, input.Email, input.PasswordHash, input.PhotoURL,
		input.Specialty, input.Bio, input.ExperienceYears,
	)

	c, err := scanCounselor(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create counselor: %w", err)
	}
	return c, nil
}

// ListCounselors retrieves counselor profiles, newest first.
func (db *DB) ListCounselors(ctx context.Context, limit, offset int) ([]Counselor, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM counselors ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			counselorColumns),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list counselors: %w", err)
	}
	defer rows.Close()

	var counselors []Counselor
	for rows.Next() {
		c, err := scanCounselor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan counselor: %w", err)
		}
		counselors = append(counselors, *c)
	}
	return counselors, rows.Err()
}

// UpdateCounselor applies a partial update and returns the record read back
// from the store.
func (db *DB) UpdateCounselor(ctx context.Context, id uuid.UUID, update *CounselorUpdate) (*Counselor, error) {
	var setClauses []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.PasswordHash != nil {
		set("password_hash", *update.PasswordHash)
	}
	if update.PhotoURL != nil {
		set("photo_url", *update.PhotoURL)
	}
	if update.Specialty != nil {
		set("specialty", *update.Specialty)
	}
	if update.Bio != nil {
		set("bio", *update.Bio)
	}
	if update.ExperienceYears != nil {
		set("experience_years", *update.ExperienceYears)
	}

	if len(setClauses) == 0 {
		c, err := db.GetCounselorByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("counselor %s: %w", id, ErrNotFound)
		}
		return c, nil
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE counselors SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), counselorColumns)

	c, err := scanCounselor(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("counselor %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update counselor: %w", err)
	}
	return c, nil
}

// DeleteCounselor removes a counselor profile.
func (db *DB) DeleteCounselor(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM counselors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete counselor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("counselor %s: %w", id, ErrNotFound)
	}
	return nil
}
