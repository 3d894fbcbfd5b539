package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/idp"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/services"
)

// SessionUserFetcher queries the identity provider for the user behind a
// session token. Implemented by idp.Client.
type SessionUserFetcher interface {
	GetUser(ctx context.Context, token string) (*idp.User, error)
}

// IdentityResolver extracts a verified identity (or none) from an incoming
// request. Two credential paths exist: a pre-verified internal assertion on
// the Authorization header (trusted internal hops only) and a session token
// from the session cookie or X-Session-Token header.
type IdentityResolver struct {
	idp        SessionUserFetcher
	cookieName string
	logger     *zap.Logger
}

// NewIdentityResolver creates a new identity resolver
func NewIdentityResolver(fetcher SessionUserFetcher, cookieName string, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{
		idp:        fetcher,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Resolve produces the request identity or none. A nil identity with a nil
// error means the request is anonymous. Errors are never an allow: a
// malformed assertion is an authentication failure, and a provider outage is
// an internal failure that must surface as a deny-safe 500 upstream.
func (r *IdentityResolver) Resolve(req *http.Request) (*models.Identity, error) {
	// Internal assertion path. The subject has already been verified by a
	// trusted upstream hop; only well-formedness is checked here.
	if subject, ok := bearerToken(req); ok {
		assertion, err := models.ParseInternalAssertion(subject)
		if err != nil {
			r.logger.Warn("malformed internal assertion",
				zap.String("remote_addr", req.RemoteAddr))
			return nil, services.WrapError(services.ErrorTypeAuthentication, "malformed internal assertion", err)
		}
		return assertion.Identity(), nil
	}

	token := r.sessionToken(req)
	if token == "" {
		return nil, nil
	}

	user, err := r.idp.GetUser(req.Context(), token)
	if err != nil {
		if errors.Is(err, idp.ErrNoSession) || errors.Is(err, idp.ErrSessionExpired) {
			return nil, nil
		}
		r.logger.Error("identity provider lookup failed", zap.Error(err))
		return nil, services.WrapInternal("identity provider lookup failed", err)
	}

	return user.Identity(), nil
}

// sessionToken extracts the session access token from the cookie or the
// X-Session-Token header (API clients without cookie jars).
func (r *IdentityResolver) sessionToken(req *http.Request) string {
	if cookie, err := req.Cookie(r.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return req.Header.Get("X-Session-Token")
}

// bearerToken extracts a Bearer token from the Authorization header
func bearerToken(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
