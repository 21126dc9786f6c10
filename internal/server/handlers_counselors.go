package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/careerdesk/careerdesk-api/internal/db"
	"github.com/careerdesk/careerdesk-api/internal/server/middleware"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

// ListCounselorsResponse represents the response for listing counselors.
type ListCounselorsResponse struct {
	Counselors []db.Counselor `json:"counselors"`
	Count      int            `json:"count"`
}

// handleCreateCounselor creates a counselor profile. Emails are unique
// across the collection; the password is hashed before it reaches the store.
func (s *Server) handleCreateCounselor(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCounselorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	exists, err := s.store.CheckCounselorEmailExists(r.Context(), req.Email)
	if err != nil {
		log.Printf("[counselors] email check failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if exists {
		s.errorResponse(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		log.Printf("[counselors] password hashing failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	counselor, err := s.store.CreateCounselor(r.Context(), &db.CreateCounselorInput{
		Name:            req.Name,
		Email:           req.Email,
		PasswordHash:    hash,
		PhotoURL:        req.PhotoURL,
		Specialty:       req.Specialty,
		Bio:             req.Bio,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		log.Printf("[counselors] create failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, counselor)
}

// handleListCounselors lists counselor profiles with limit/offset paging.
func (s *Server) handleListCounselors(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)
	offset := parseQueryInt(r, "offset", 0, 1<<30)

	counselors, err := s.store.ListCounselors(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[counselors] list failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ListCounselorsResponse{
		Counselors: counselors,
		Count:      len(counselors),
	})
}

// handleGetCounselor retrieves a counselor profile by ID.
func (s *Server) handleGetCounselor(w http.ResponseWriter, r *http.Request) {
	counselorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid counselor ID")
		return
	}

	counselor, err := s.store.GetCounselorByID(r.Context(), counselorID)
	if err != nil {
		log.Printf("[counselors] get failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if counselor == nil {
		s.errorResponse(w, http.StatusNotFound, "Counselor not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, counselor)
}

// handleUpdateCounselor applies a partial update. Admins may update any
// profile; a counselor may only update their own.
func (s *Server) handleUpdateCounselor(w http.ResponseWriter, r *http.Request) {
	counselorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid counselor ID")
		return
	}

	principal, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if principal.Role != types.RoleAdmin && principal.ID != counselorID {
		s.errorResponse(w, http.StatusForbidden, "Cannot modify another counselor's profile")
		return
	}

	var patch types.CounselorPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	update := &db.CounselorUpdate{
		Name:            patch.Name,
		Email:           patch.Email,
		PhotoURL:        patch.PhotoURL,
		Specialty:       patch.Specialty,
		Bio:             patch.Bio,
		ExperienceYears: patch.ExperienceYears,
	}

	if patch.Email != nil {
		existing, err := s.store.GetCounselorByEmail(r.Context(), *patch.Email)
		if err != nil {
			log.Printf("[counselors] email check failed: %v", err)
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
		if existing != nil && existing.ID != counselorID {
			s.errorResponse(w, http.StatusConflict, "Email already registered")
			return
		}
	}

	if patch.Password != nil {
		hash, err := s.passwords.HashPassword(*patch.Password)
		if err != nil {
			log.Printf("[counselors] password hashing failed: %v", err)
			s.errorResponse(w, http.StatusInternalServerError, "Failed to process password")
			return
		}
		update.PasswordHash = &hash
	}

	counselor, err := s.store.UpdateCounselor(r.Context(), counselorID, update)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Counselor not found")
			return
		}
		log.Printf("[counselors] update failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, counselor)
}

// handleDeleteCounselor removes a counselor profile.
func (s *Server) handleDeleteCounselor(w http.ResponseWriter, r *http.Request) {
	counselorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid counselor ID")
		return
	}

	if err := s.store.DeleteCounselor(r.Context(), counselorID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Counselor not found")
			return
		}
		log.Printf("[counselors] delete failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Counselor deleted"})
}
