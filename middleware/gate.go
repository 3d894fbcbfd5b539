package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/policy"
	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/utils"
)

// AdminAuthorizer decides whether a resolved identity holds administrator
// privilege. The gate consults it only for admin-class paths.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, id *models.Identity) error
}

// AuditRecorder accepts decision records without blocking the request path
type AuditRecorder interface {
	Record(entry *models.AuditLog)
}

// RouteGate admits, redirects, or denies requests to browser-facing paths
// according to the route admission policy. It is the only place admission
// decisions are turned into HTTP responses, so every outcome is audited here.
type RouteGate struct {
	resolver *IdentityResolver
	policy   *policy.Policy
	admin    AdminAuthorizer
	audit    AuditRecorder
	logger   *zap.Logger
}

// NewRouteGate creates a new RouteGate
func NewRouteGate(resolver *IdentityResolver, pol *policy.Policy, admin AdminAuthorizer, audit AuditRecorder, logger *zap.Logger) *RouteGate {
	return &RouteGate{
		resolver: resolver,
		policy:   pol,
		admin:    admin,
		audit:    audit,
		logger:   logger,
	}
}

// Admit wraps a handler with route admission. The wrapped handler runs only
// for allow decisions; redirects use 307 so the browser preserves the method.
func (g *RouteGate) Admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id, err := g.resolver.Resolve(r)
		if err != nil && !services.IsAuthenticationError(err) {
			// Identity provider failure. Treating it as anonymous could admit
			// a request the policy would have stopped, so fail closed.
			d := policy.Error(g.policy.Classify(r.URL.Path), "identity resolution failed", err)
			g.render(w, r, next, nil, d, start)
			return
		}
		// Malformed credentials are not a collaborator failure; the request
		// proceeds anonymous and the policy decides its fate.

		d := g.policy.Decide(r.URL.Path, id)

		if d.Kind == policy.KindAllow && d.Class == policy.ClassAdmin {
			if aerr := g.admin.Authorize(r.Context(), id); aerr != nil {
				if services.IsAuthorizationError(aerr) || services.IsAuthenticationError(aerr) || services.IsNotFoundError(aerr) {
					d = policy.Deny(d.Class, "administrator privilege required")
				} else {
					d = policy.Error(d.Class, "administrator check failed", aerr)
				}
			}
		}

		g.render(w, r, next, id, d, start)
	})
}

func (g *RouteGate) render(w http.ResponseWriter, r *http.Request, next http.Handler, id *models.Identity, d policy.Decision, start time.Time) {
	var status int

	switch d.Kind {
	case policy.KindAllow:
		status = http.StatusOK
	case policy.KindRedirect:
		status = http.StatusTemporaryRedirect
		http.Redirect(w, r, d.Location(), status)
	case policy.KindDeny:
		status = http.StatusForbidden
		_ = utils.WriteForbidden(w, d.Reason)
	default:
		status = http.StatusInternalServerError
		g.logger.Error("route admission failed",
			zap.String("path", r.URL.Path),
			zap.String("reason", d.Reason),
			zap.Error(d.Err))
		_ = utils.WriteInternalServerError(w, "")
	}

	g.record(r, id, d, status, start)

	if d.Kind == policy.KindAllow {
		if id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	}
}

func (g *RouteGate) record(r *http.Request, id *models.Identity, d policy.Decision, status int, start time.Time) {
	if g.audit == nil {
		return
	}

	entry := models.NewAuditLog(models.AuditActionRouteAdmission, outcomeFor(d.Kind), r.URL.Path).
		WithReason(d.Reason).
		WithRequest(chimiddleware.GetReqID(r.Context()), r.RemoteAddr, r.UserAgent()).
		WithResult(status, int(time.Since(start).Milliseconds()))
	if id != nil {
		entry = entry.WithSubject(id.ID)
	}
	if d.Kind == policy.KindRedirect {
		entry = entry.WithDetails(map[string]string{"target": d.Target})
	}

	g.audit.Record(entry)
}

func outcomeFor(k policy.Kind) models.AuditOutcome {
	switch k {
	case policy.KindAllow:
		return models.AuditOutcomeAllow
	case policy.KindRedirect:
		return models.AuditOutcomeRedirect
	case policy.KindDeny:
		return models.AuditOutcomeDeny
	default:
		return models.AuditOutcomeError
	}
}
