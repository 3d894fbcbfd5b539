package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/repositories"
	"go.uber.org/zap"
)

// AdminRepository implements the repositories.AdminRepository interface
type AdminRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *DB, logger *zap.Logger) repositories.AdminRepository {
	return &AdminRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertOnLogin inserts the admin record or refreshes email and last-login on
// conflict. The single INSERT ... ON CONFLICT statement keeps concurrent
// logins for the same identity from racing; both callers converge on one row.
func (r *AdminRepository) UpsertOnLogin(ctx context.Context, record *models.AdminRecord) (*models.AdminRecord, error) {
	query := `
		INSERT INTO admins (id, auth_id, email, name, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (auth_id) DO UPDATE SET
			email = EXCLUDED.email,
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, auth_id, email, name, last_login_at, created_at, updated_at
	`

	executor := GetExecutor(ctx, r.db)
	stored := &models.AdminRecord{}

	err := executor.QueryRowContext(ctx, query,
		record.ID,
		record.AuthID,
		record.Email,
		record.Name,
		record.LastLoginAt,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(
		&stored.ID,
		&stored.AuthID,
		&stored.Email,
		&stored.Name,
		&stored.LastLoginAt,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert admin: %w", err)
	}

	r.logger.Debug("admin upserted",
		zap.String("id", stored.ID.String()),
		zap.String("auth_id", stored.AuthID))
	return stored, nil
}

// GetByAuthID retrieves an admin record by provider subject id
func (r *AdminRepository) GetByAuthID(ctx context.Context, authID string) (*models.AdminRecord, error) {
	query := `
		SELECT id, auth_id, email, name, last_login_at, created_at, updated_at
		FROM admins
		WHERE auth_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	record := &models.AdminRecord{}

	err := executor.QueryRowContext(ctx, query, authID).Scan(
		&record.ID,
		&record.AuthID,
		&record.Email,
		&record.Name,
		&record.LastLoginAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin not found for auth_id %s: %w", authID, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return record, nil
}

// UpsertSessionMarker inserts or reactivates the per-identity session marker.
// socket_id is unique, so a second login for the same identity refreshes the
// existing marker instead of creating another row.
func (r *AdminRepository) UpsertSessionMarker(ctx context.Context, marker *models.AdminSessionMarker) error {
	query := `
		INSERT INTO admin_sessions (admin_id, socket_id, is_active, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (socket_id) DO UPDATE SET
			admin_id = EXCLUDED.admin_id,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		marker.AdminID,
		marker.SocketID,
		marker.IsActive,
		marker.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert admin session marker: %w", err)
	}

	r.logger.Debug("admin session marker upserted",
		zap.String("admin_id", marker.AdminID.String()),
		zap.String("socket_id", marker.SocketID))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *AdminRepository) WithTx(tx repositories.Transaction) repositories.AdminRepository {
	return &AdminRepository{
		db:     r.db,
		logger: r.logger,
	}
}
