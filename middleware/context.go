package middleware

import (
	"context"

	"github.com/revisetax/docs-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the resolved identity
	IdentityKey contextKey = "identity"
)

// GetIdentityFromContext retrieves the resolved identity from context.
// Returns nil when no identity was resolved for the request.
func GetIdentityFromContext(ctx context.Context) *models.Identity {
	if val := ctx.Value(IdentityKey); val != nil {
		if id, ok := val.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

// WithIdentity adds a resolved identity to the context
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}
