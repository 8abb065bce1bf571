package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/rangeops/rangecore/pkg/asset"
	"github.com/rangeops/rangecore/pkg/roster"
	"github.com/rangeops/rangecore/pkg/team"
	"github.com/rangeops/rangecore/pkg/topology"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// sanitizeError converts an internal error to a user-safe message.
// Internal details like file paths are logged but not exposed.
func sanitizeError(err error, operation string) string {
	if err == nil {
		return ""
	}
	log.Printf("ERROR [%s]: %v", operation, err)
	return fmt.Sprintf("%s failed", operation)
}

// respondStoreError maps store errors onto HTTP statuses: validation
// failures are the caller's fault, unavailable backends are ours.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case topology.IsValidationError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, topology.ErrStoreUnavailable), errors.Is(err, topology.ErrStoreClosed):
		s.respondError(w, http.StatusServiceUnavailable, sanitizeError(err, operation))
	case errors.Is(err, asset.ErrAssetNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, roster.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, team.ErrInvalidRole):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, sanitizeError(err, operation))
	}
}

// queryProjectID extracts the mandatory projectId query parameter.
func (s *Server) queryProjectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		s.respondError(w, http.StatusBadRequest, "projectId query parameter is required")
		return "", false
	}
	return projectID, true
}
