package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/middleware"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/utils"
)

// AdminGatekeeper authorizes administrator-only endpoints
type AdminGatekeeper interface {
	Authorize(ctx context.Context, id *models.Identity) error
}

// AuditReader exposes stored decision records for inspection
type AuditReader interface {
	Query(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error)
	TraceRequest(ctx context.Context, requestID string) ([]*models.AuditLog, error)
}

// AuditHandler serves the administrator-only audit inspection endpoints
type AuditHandler struct {
	admins AdminGatekeeper
	reader AuditReader
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(admins AdminGatekeeper, reader AuditReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		admins: admins,
		reader: reader,
		logger: logger,
	}
}

// auditListQuery carries the validated date-range listing parameters
type auditListQuery struct {
	Limit  int `validate:"gte=1,lte=500"`
	Offset int `validate:"gte=0"`
}

// HandleList handles GET /api/v1/admin/audit.
// Lists decision records within a date range, newest first. Query parameters:
// from and to (RFC 3339, defaulting to the last 24 hours), limit and offset.
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	if err := h.admins.Authorize(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	end := time.Now()
	start := end.Add(-24 * time.Hour)
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "from must be an RFC 3339 timestamp", nil)
			return
		}
		start = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "to must be an RFC 3339 timestamp", nil)
			return
		}
		end = parsed
	}
	if end.Before(start) {
		_ = utils.WriteBadRequest(w, "to must not precede from", nil)
		return
	}

	params := auditListQuery{Limit: 50, Offset: 0}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "limit must be an integer", nil)
			return
		}
		params.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "offset must be an integer", nil)
			return
		}
		params.Offset = n
	}
	if err := utils.ValidateStruct(params); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	entries, err := h.reader.Query(r.Context(), start, end, params.Limit, params.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: entries})
}

// HandleTrace handles GET /api/v1/admin/audit/{requestID}.
// Returns every decision record written for one gateway request.
func (h *AuditHandler) HandleTrace(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	if err := h.admins.Authorize(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		_ = utils.WriteBadRequest(w, "request id is required", nil)
		return
	}

	entries, err := h.reader.TraceRequest(r.Context(), requestID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: entries})
}
