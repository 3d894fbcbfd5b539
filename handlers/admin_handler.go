package handlers

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/middleware"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/utils"
)

// AdminAuthority is the service surface the admin endpoints need
type AdminAuthority interface {
	Login(ctx context.Context, id *models.Identity) (*models.AdminRecord, error)
	Current(ctx context.Context, id *models.Identity) (*models.AdminRecord, error)
}

// AdminHandler handles administrator HTTP requests
type AdminHandler struct {
	admins AdminAuthority
	audit  AuditRecorder
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admins AdminAuthority, audit AuditRecorder, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		audit:  audit,
		logger: logger,
	}
}

// HandleLogin handles POST /api/v1/admin/login.
// Establishes the durable administrator record and session marker for a
// qualifying identity. Idempotent; repeated logins refresh the same rows.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	record, err := h.admins.Login(r.Context(), id)
	h.record(r, models.AuditActionAdminLogin, id, err, start)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: record})
}

// HandleCurrent handles GET /api/v1/admin/me.
// Read-only lookup of the stored administrator record; never creates one.
func (h *AdminHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := middleware.GetIdentityFromContext(r.Context())
	if id == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	record, err := h.admins.Current(r.Context(), id)
	h.record(r, models.AuditActionAdminLookup, id, err, start)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: record})
}

func (h *AdminHandler) record(r *http.Request, action models.AuditAction, id *models.Identity, err error, start time.Time) {
	if h.audit == nil {
		return
	}

	entry := models.NewAuditLog(action, auditOutcome(err), r.URL.Path).
		WithSubject(id.ID).
		WithRequest(chimiddleware.GetReqID(r.Context()), r.RemoteAddr, r.UserAgent()).
		WithResult(StatusForError(err), int(time.Since(start).Milliseconds()))
	if err != nil {
		entry = entry.WithReason(err.Error())
		if services.IsInternalError(err) {
			// Generic reason only; the underlying error stays in server logs.
			entry = entry.WithReason("internal error")
		}
	}

	h.audit.Record(entry)
}
