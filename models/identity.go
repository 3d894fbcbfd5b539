package models

import (
	"github.com/google/uuid"
)

// IdentitySource indicates which trust path produced an Identity
type IdentitySource string

const (
	// SourceSession means the identity was resolved from a session token via the identity provider
	SourceSession IdentitySource = "session"
	// SourceInternalAssertion means the identity was forwarded pre-verified by a trusted internal hop
	SourceInternalAssertion IdentitySource = "internal_assertion"
)

// Identity represents the verified caller for the duration of one request.
// It is produced by the identity resolver and never persisted beyond what
// AdminAuthority explicitly stores.
type Identity struct {
	ID            string         `json:"id"`
	Email         string         `json:"email,omitempty"`
	Name          string         `json:"name,omitempty"`
	PhoneVerified bool           `json:"phone_verified"`
	Provider      string         `json:"provider,omitempty"`
	ProviderID    string         `json:"provider_id,omitempty"`
	Source        IdentitySource `json:"source"`
}

// IsInternal returns true if the identity came from a trusted internal hop.
// Such identities carry only a subject id; email and profile fields are empty.
func (i *Identity) IsInternal() bool {
	return i.Source == SourceInternalAssertion
}

// InternalAssertion is a pre-verified subject id forwarded by a trusted
// internal caller. Modeled as its own credential type so the trust boundary
// stays visible in the type system instead of being overloaded onto the
// session token path.
type InternalAssertion struct {
	Subject uuid.UUID
}

// Identity converts the assertion into a request identity with only the
// subject populated.
func (a InternalAssertion) Identity() *Identity {
	return &Identity{
		ID:     a.Subject.String(),
		Source: SourceInternalAssertion,
	}
}

// ParseInternalAssertion parses a forwarded subject id. The subject must be a
// well-formed UUID; anything else is rejected before it can reach a decision.
func ParseInternalAssertion(subject string) (InternalAssertion, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return InternalAssertion{}, err
	}
	return InternalAssertion{Subject: id}, nil
}
