package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/revisetax/docs-gateway/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Registered users table
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			auth_id VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255),
			phone VARCHAR(32),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Administrator records table
		CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY,
			auth_id VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255),
			last_login_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Administrator session markers table
		CREATE TABLE IF NOT EXISTS admin_sessions (
			admin_id UUID NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
			socket_id VARCHAR(255) NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT true,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Folders table, ownership lives here
		CREATE TABLE IF NOT EXISTS folders (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Files table
		CREATE TABLE IF NOT EXISTS files (
			id UUID PRIMARY KEY,
			folder_id UUID NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
			storage_key VARCHAR(1024) NOT NULL,
			mime_type VARCHAR(255),
			size BIGINT,
			original_name VARCHAR(512),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Audit logs table
		CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			action VARCHAR(100) NOT NULL,
			outcome VARCHAR(50) NOT NULL,
			reason TEXT,
			subject VARCHAR(255),
			path TEXT NOT NULL,
			details JSONB,
			ip_address VARCHAR(45),
			user_agent TEXT,
			request_id VARCHAR(255),
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			status_code INTEGER,
			latency_ms INTEGER
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_users_auth_id ON users(auth_id);
		CREATE INDEX IF NOT EXISTS idx_admins_auth_id ON admins(auth_id);
		CREATE INDEX IF NOT EXISTS idx_admin_sessions_admin_id ON admin_sessions(admin_id);
		CREATE INDEX IF NOT EXISTS idx_folders_owner_id ON folders(owner_id);
		CREATE INDEX IF NOT EXISTS idx_files_folder_id ON files(folder_id);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_request_id ON audit_logs(request_id);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_subject ON audit_logs(subject);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
