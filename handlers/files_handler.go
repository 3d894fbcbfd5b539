package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/middleware"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/utils"
)

// FileAccessGuard is the service surface the file endpoints need
type FileAccessGuard interface {
	GrantAccess(ctx context.Context, id *models.Identity, fileID uuid.UUID, ttl time.Duration) (*models.AccessGrant, error)
}

// FilesHandler handles file access HTTP requests
type FilesHandler struct {
	files  FileAccessGuard
	audit  AuditRecorder
	logger *zap.Logger
}

// NewFilesHandler creates a new FilesHandler
func NewFilesHandler(files FileAccessGuard, audit AuditRecorder, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{
		files:  files,
		audit:  audit,
		logger: logger,
	}
}

// HandleGrantURL handles GET /api/v1/files/{id}/url.
// Issues a time-limited access grant for the file when the caller owns it.
// An optional ttl query parameter (Go duration syntax) shortens or extends
// the grant within the configured bounds.
func (h *FilesHandler) HandleGrantURL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.record(r, id, services.ErrInvalidFileID, start)
		HandleServiceError(w, services.ErrInvalidFileID, h.logger)
		return
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			verr := services.WrapError(services.ErrorTypeValidation, "invalid ttl", err)
			h.record(r, id, verr, start)
			HandleServiceError(w, verr, h.logger)
			return
		}
	}

	grant, err := h.files.GrantAccess(r.Context(), id, fileID, ttl)
	h.record(r, id, err, start)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: grant})
}

func (h *FilesHandler) record(r *http.Request, id *models.Identity, err error, start time.Time) {
	if h.audit == nil {
		return
	}

	entry := models.NewAuditLog(models.AuditActionFileAccess, auditOutcome(err), r.URL.Path).
		WithSubject(id.ID).
		WithRequest(chimiddleware.GetReqID(r.Context()), r.RemoteAddr, r.UserAgent()).
		WithResult(StatusForError(err), int(time.Since(start).Milliseconds()))
	if err != nil {
		reason := err.Error()
		if services.IsInternalError(err) {
			reason = "internal error"
		}
		entry = entry.WithReason(reason)
	}

	h.audit.Record(entry)
}
