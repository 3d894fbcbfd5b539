package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/revisetax/docs-gateway/middleware"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/utils"
)

// Common error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common success response structure
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// AuditRecorder accepts decision records without blocking the request path
type AuditRecorder interface {
	Record(entry *models.AuditLog)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, statusCode int, err string, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// auditOutcome maps a handler result to an audit outcome tag
func auditOutcome(err error) models.AuditOutcome {
	switch {
	case err == nil:
		return models.AuditOutcomeAllow
	case services.IsInternalError(err):
		return models.AuditOutcomeError
	default:
		return models.AuditOutcomeDeny
	}
}

// CurrentIdentityHandler handles GET /api/v1/me, returning the resolved
// identity for the request.
func CurrentIdentityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetIdentityFromContext(r.Context())
		if id == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Data: id})
	}
}

// PageHandler terminates gated browser paths. The gate in front of it has
// already admitted the request, so it only acknowledges the area.
func PageHandler(area string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, SuccessResponse{
			Data: map[string]string{
				"area": area,
				"path": r.URL.Path,
			},
		})
	}
}
