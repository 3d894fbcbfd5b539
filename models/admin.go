package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AdminRecord represents a durable administrator record. There is at most one
// record per identity, keyed by the unique auth_id column.
type AdminRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AuthID      string    `json:"auth_id" db:"auth_id"` // identity provider subject id
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	LastLoginAt time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the AdminRecord model
func (AdminRecord) TableName() string {
	return "admins"
}

// NewAdminRecord creates a new AdminRecord for a qualifying identity.
// When no display name is known it is derived from the email local-part.
func NewAdminRecord(authID, email, name string) *AdminRecord {
	if name == "" {
		name = DisplayNameFromEmail(email)
	}
	now := time.Now()
	return &AdminRecord{
		ID:          uuid.New(),
		AuthID:      authID,
		Email:       email,
		Name:        name,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DisplayNameFromEmail derives a default display name from the local part of
// an email address.
func DisplayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// AdminSessionMarker tracks live-session presence for an administrator
// identity. At most one marker exists per identity id (unique socket_id).
type AdminSessionMarker struct {
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	SocketID  string    `json:"socket_id" db:"socket_id"` // = identity id
	IsActive  bool      `json:"is_active" db:"is_active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the AdminSessionMarker model
func (AdminSessionMarker) TableName() string {
	return "admin_sessions"
}
