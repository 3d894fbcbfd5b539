package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/utils"
)

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	resolver *IdentityResolver
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver *IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate resolves the request identity (or none) and stores it in the
// request context. It never rejects anonymous requests; pair it with
// RequireIdentity for routes that need one.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.resolver.Resolve(r)
		if err != nil {
			if services.IsAuthenticationError(err) {
				_ = utils.WriteUnauthorized(w, "Invalid credentials")
				return
			}
			// Collaborator failure: deny-safe, never an allow.
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		if id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireIdentity rejects requests without a resolved identity.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentityFromContext(r.Context()) == nil {
			m.logger.Debug("request without identity rejected",
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
