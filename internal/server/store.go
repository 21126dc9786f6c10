package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/db"
)

// Store is the data-access surface the handlers depend on. *db.DB satisfies
// it; tests substitute a fake.
type Store interface {
	ListJobs(ctx context.Context, opts db.ListJobsOptions) ([]db.Job, string, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	CreateJob(ctx context.Context, input *db.CreateJobInput) (*db.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, update *db.JobUpdate) (*db.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	SearchJobs(ctx context.Context, text string) ([]db.Job, error)
	GetJobLogo(ctx context.Context, jobID uuid.UUID, filename string) (*db.JobLogo, error)

	GetCounselorByID(ctx context.Context, id uuid.UUID) (*db.Counselor, error)
	GetCounselorByEmail(ctx context.Context, email string) (*db.Counselor, error)
	CheckCounselorEmailExists(ctx context.Context, email string) (bool, error)
	CreateCounselor(ctx context.Context, input *db.CreateCounselorInput) (*db.Counselor, error)
	ListCounselors(ctx context.Context, limit, offset int) ([]db.Counselor, error)
	UpdateCounselor(ctx context.Context, id uuid.UUID, update *db.CounselorUpdate) (*db.Counselor, error)
	DeleteCounselor(ctx context.Context, id uuid.UUID) error
}

// CounterSink records best-effort view/application counters.
type CounterSink interface {
	ViewSeen(ctx context.Context, id uuid.UUID)
	ApplicationClicked(ctx context.Context, id uuid.UUID)
}
