package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessGrant is an ephemeral, time-bounded authorization to retrieve one
// specific file. Grants are generated fresh per request and never persisted
// or reused.
type AccessGrant struct {
	FileID    uuid.UUID `json:"file_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the grant has not yet expired.
func (g *AccessGrant) Valid(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}
