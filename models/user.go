package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an internal user row backing a caller registered with the
// identity provider. The gateway only reads users; registration and profile
// management belong to the surrounding application.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AuthID    string    `json:"auth_id" db:"auth_id"` // identity provider subject id
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
