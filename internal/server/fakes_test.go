package server

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/config"
	"github.com/careerdesk/careerdesk-api/internal/db"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]db.Job
	counselors map[uuid.UUID]db.Counselor
	logos      map[string]db.JobLogo // key: jobID/filename

	listOpts *db.ListJobsOptions // last options seen by ListJobs
	listNext string
	err      error // when set, every method fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:       make(map[uuid.UUID]db.Job),
		counselors: make(map[uuid.UUID]db.Counselor),
		logos:      make(map[string]db.JobLogo),
	}
}

func (f *fakeStore) ListJobs(_ context.Context, opts db.ListJobsOptions) ([]db.Job, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, "", f.err
	}
	f.listOpts = &opts
	var jobs []db.Job
	for _, j := range f.jobs {
		jobs = append(jobs, j)
	}
	return jobs, f.listNext, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if j, ok := f.jobs[id]; ok {
		return &j, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateJob(_ context.Context, input *db.CreateJobInput) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	j := db.Job{
		ID:              uuid.New(),
		Title:           input.Title,
		Company:         input.Company,
		Description:     input.Description,
		EmploymentType:  input.EmploymentType,
		Category:        input.Category,
		ExperienceLevel: input.ExperienceLevel,
		SalaryMin:       input.SalaryMin,
		SalaryMax:       input.SalaryMax,
		SalaryCurrency:  input.SalaryCurrency,
		Highlights:      input.Highlights,
		Tags:            input.Tags,
		ApplyLink:       input.ApplyLink,
		ExpiryDate:      input.ExpiryDate,
	}
	f.jobs[j.ID] = j
	if input.Logo != nil {
		f.logos[j.ID.String()+"/"+input.Logo.Filename] = db.JobLogo{
			JobID:       j.ID,
			Filename:    input.Logo.Filename,
			ContentType: input.Logo.ContentType,
			Data:        input.Logo.Data,
		}
	}
	return &j, nil
}

func (f *fakeStore) UpdateJob(_ context.Context, id uuid.UUID, update *db.JobUpdate) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	j, ok := f.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if update.Title != nil {
		j.Title = *update.Title
	}
	if update.SalaryMin != nil {
		j.SalaryMin = *update.SalaryMin
	}
	if update.SalaryMax != nil {
		j.SalaryMax = *update.SalaryMax
	}
	f.jobs[id] = j
	return &j, nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.jobs[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeStore) SearchJobs(_ context.Context, text string) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var jobs []db.Job
	for _, j := range f.jobs {
		jobs = append(jobs, j)
	}
	return db.FilterJobsByText(jobs, text), nil
}

func (f *fakeStore) GetJobLogo(_ context.Context, jobID uuid.UUID, filename string) (*db.JobLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if logo, ok := f.logos[jobID.String()+"/"+filename]; ok {
		return &logo, nil
	}
	return nil, nil
}

func (f *fakeStore) GetCounselorByID(_ context.Context, id uuid.UUID) (*db.Counselor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.counselors[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) GetCounselorByEmail(_ context.Context, email string) (*db.Counselor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.counselors {
		if strings.EqualFold(c.Email, email) {
			counselor := c
			return &counselor, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckCounselorEmailExists(ctx context.Context, email string) (bool, error) {
	c, err := f.GetCounselorByEmail(ctx, email)
	return c != nil, err
}

func (f *fakeStore) CreateCounselor(_ context.Context, input *db.CreateCounselorInput) (*db.Counselor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := db.Counselor{
		ID:              uuid.New(),
		Name:            input.Name,
		Email:           input.Email,
		PasswordHash:    input.PasswordHash,
		PhotoURL:        input.PhotoURL,
		Specialty:       input.Specialty,
		Bio:             input.Bio,
		ExperienceYears: input.ExperienceYears,
	}
	f.counselors[c.ID] = c
	return &c, nil
}

func (f *fakeStore) ListCounselors(_ context.Context, _, _ int) ([]db.Counselor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var counselors []db.Counselor
	for _, c := range f.counselors {
		counselors = append(counselors, c)
	}
	return counselors, nil
}

func (f *fakeStore) UpdateCounselor(_ context.Context, id uuid.UUID, update *db.CounselorUpdate) (*db.Counselor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.counselors[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Email != nil {
		c.Email = *update.Email
	}
	if update.PasswordHash != nil {
		c.PasswordHash = *update.PasswordHash
	}
	if update.Bio != nil {
		c.Bio = *update.Bio
	}
	f.counselors[id] = c
	return &c, nil
}

func (f *fakeStore) DeleteCounselor(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.counselors[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.counselors, id)
	return nil
}

// fakeCounterSink records counter calls.
type fakeCounterSink struct {
	mu     sync.Mutex
	views  []uuid.UUID
	clicks []uuid.UUID
}

func (f *fakeCounterSink) ViewSeen(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, id)
}

func (f *fakeCounterSink) ApplicationClicked(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, id)
}

// newTestServer builds a Server on fakes, without network or database.
func newTestServer() (*Server, *fakeStore, *fakeCounterSink) {
	store := newFakeStore()
	sink := &fakeCounterSink{}
	s := &Server{
		store:     store,
		counters:  sink,
		passwords: &config.PasswordConfig{BcryptCost: 10},
	}
	return s, store, sink
}
