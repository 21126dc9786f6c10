package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// handleGetJobLogo serves a stored logo blob. Logos are public: the URL is
// embedded in postings and fetched by browsers without credentials.
func (s *Server) handleGetJobLogo(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}
	filename := r.PathValue("filename")

	logo, err := s.store.GetJobLogo(r.Context(), jobID, filename)
	if err != nil {
		log.Printf("[logos] get failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if logo == nil {
		s.errorResponse(w, http.StatusNotFound, "Logo not found")
		return
	}

	w.Header().Set("Content-Type", logo.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(logo.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(logo.Data)
}
