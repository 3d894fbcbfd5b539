package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/revisetax/docs-gateway/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// AdminRepository handles administrator records and session markers
type AdminRepository interface {
	// UpsertOnLogin inserts the admin record or refreshes email and
	// last-login on conflict, in a single atomic statement
	UpsertOnLogin(ctx context.Context, record *models.AdminRecord) (*models.AdminRecord, error)

	// GetByAuthID retrieves an admin record by provider subject id
	GetByAuthID(ctx context.Context, authID string) (*models.AdminRecord, error)

	// UpsertSessionMarker inserts or reactivates the per-identity session
	// marker keyed on socket id, in a single atomic statement
	UpsertSessionMarker(ctx context.Context, marker *models.AdminSessionMarker) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AdminRepository
}

// UserRepository handles registered user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByAuthID retrieves a user by provider subject id
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// FileRepository handles stored file metadata
type FileRepository interface {
	// GetWithFolder retrieves a file together with its containing folder,
	// which carries ownership
	GetWithFolder(ctx context.Context, id uuid.UUID) (*models.FileRecord, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) FileRepository
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByRequestID retrieves audit logs by request ID
	GetByRequestID(ctx context.Context, requestID string) ([]*models.AuditLog, error)

	// GetByDateRange retrieves audit logs within a date range with pagination
	GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Admins    AdminRepository
	Users     UserRepository
	Files     FileRepository
	AuditLogs AuditRepository
}
