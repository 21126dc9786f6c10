package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/db"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

// ListJobsResponse represents the response for listing job postings.
// NextCursor is opaque; an empty value means there are no further pages.
type ListJobsResponse struct {
	Jobs       []db.Job `json:"jobs"`
	Count      int      `json:"count"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// handleListJobs lists postings with optional filters and cursor pagination
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := db.ListJobsOptions{
		Category:        q.Get("category"),
		EmploymentType:  q.Get("employment_type"),
		ExperienceLevel: q.Get("experience_level"),
		Tag:             q.Get("tag"),
		PageSize:        parseQueryInt(r, "page_size", db.DefaultPageSize, 100),
	}

	if remoteStr := q.Get("remote"); remoteStr != "" {
		remote, err := strconv.ParseBool(remoteStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid remote flag")
			return
		}
		opts.Remote = &remote
	}
	if popularStr := q.Get("popular"); popularStr != "" {
		popular, err := strconv.ParseBool(popularStr)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid popular flag")
			return
		}
		opts.Popular = &popular
	}

	switch status := q.Get("status"); status {
	case "", db.JobStatusActive, db.JobStatusExpired:
		opts.Status = status
	default:
		s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	cursor, err := db.DecodeCursor(q.Get("cursor"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid cursor")
		return
	}
	opts.Cursor = cursor

	jobs, nextCursor, err := s.store.ListJobs(r.Context(), opts)
	if err != nil {
		log.Printf("[jobs] list failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobsResponse{
		Jobs:       jobs,
		Count:      len(jobs),
		NextCursor: nextCursor,
	})
}

// handleGetJob retrieves a posting by ID. The view counter increment is
// fire-and-forget: its failure is logged inside the counter sink and never
// fails the read.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		log.Printf("[jobs] get failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.counters.ViewSeen(r.Context(), jobID)

	s.jsonResponse(w, http.StatusOK, job)
}

// handleSearchJobs runs the in-process substring search. Unpaginated and
// O(collection size); fine at admin-dashboard scale.
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		s.errorResponse(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	jobs, err := s.store.SearchJobs(r.Context(), text)
	if err != nil {
		log.Printf("[jobs] search failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobsResponse{Jobs: jobs, Count: len(jobs)})
}

// handleCreateJob creates a posting from form-shaped input
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := createInputFromRequest(&req)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.CreateJob(r.Context(), input)
	if err != nil {
		log.Printf("[jobs] create failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJob applies a partial update and returns the record as read
// back from the store after the write.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var patch types.JobPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	update, err := jobUpdateFromPatch(&patch)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.UpdateJob(r.Context(), jobID, update)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Printf("[jobs] update failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes a posting. Deleting an already-deleted ID is a
// clean not-found.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	if err := s.store.DeleteJob(r.Context(), jobID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Printf("[jobs] delete failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Job deleted"})
}

// handleApplyClick records an apply-click: applications +1, popularity +10.
// Fire-and-forget from the caller's perspective.
func (s *Server) handleApplyClick(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	s.counters.ApplicationClicked(r.Context(), jobID)

	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// createInputFromRequest converts the form-shaped request into store input:
// flat highlight lists are nested, the plain expiry date becomes a
// timestamp, and raw logo bytes become an upload.
func createInputFromRequest(req *types.CreateJobRequest) (*db.CreateJobInput, error) {
	expiry, err := req.ParseExpiry()
	if err != nil {
		return nil, err
	}

	input := &db.CreateJobInput{
		Title:           req.Title,
		Company:         req.Company,
		City:            req.City,
		Country:         req.Country,
		Description:     req.Description,
		EmploymentType:  req.EmploymentType,
		Category:        req.Category,
		ExperienceLevel: req.ExperienceLevel,
		Remote:          req.Remote,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  req.SalaryCurrency,
		Highlights: db.Highlights{
			Qualifications:   req.Qualifications,
			Responsibilities: req.Responsibilities,
			Benefits:         req.Benefits,
		},
		Tags:         req.Tags,
		ApplyLink:    req.ApplyLink,
		ExternalLink: req.ExternalLink,
		LogoURL:      req.LogoURL,
		ExpiryDate:   expiry,
		PostedBy:     req.PostedBy,
	}

	if len(req.LogoData) > 0 {
		input.Logo = &db.LogoUpload{
			Filename:    req.LogoFilename,
			ContentType: http.DetectContentType(req.LogoData),
			Data:        req.LogoData,
		}
	}

	return input, nil
}

// jobUpdateFromPatch converts an API patch into a store update.
func jobUpdateFromPatch(patch *types.JobPatch) (*db.JobUpdate, error) {
	update := &db.JobUpdate{
		Title:            patch.Title,
		Company:          patch.Company,
		City:             patch.City,
		Country:          patch.Country,
		Description:      patch.Description,
		EmploymentType:   patch.EmploymentType,
		Category:         patch.Category,
		ExperienceLevel:  patch.ExperienceLevel,
		Remote:           patch.Remote,
		SalaryMin:        patch.SalaryMin,
		SalaryMax:        patch.SalaryMax,
		SalaryCurrency:   patch.SalaryCurrency,
		Qualifications:   patch.Qualifications,
		Responsibilities: patch.Responsibilities,
		Benefits:         patch.Benefits,
		Tags:             patch.Tags,
		ApplyLink:        patch.ApplyLink,
		ExternalLink:     patch.ExternalLink,
		LogoURL:          patch.LogoURL,
		PostedBy:         patch.PostedBy,
	}

	if patch.ExpiryDate != nil {
		expiry, err := parseDate(*patch.ExpiryDate)
		if err != nil {
			return nil, err
		}
		update.ExpiryDate = &expiry
	}

	if len(patch.LogoData) > 0 {
		update.Logo = &db.LogoUpload{
			Filename:    patch.LogoFilename,
			ContentType: http.DetectContentType(patch.LogoData),
			Data:        patch.LogoData,
		}
	}

	return update, nil
}
