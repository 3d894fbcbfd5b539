package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/repositories"
	"go.uber.org/zap"
)

// FileRepository implements the repositories.FileRepository interface
type FileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *DB, logger *zap.Logger) repositories.FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

// GetWithFolder retrieves a file joined with its containing folder. The
// folder carries ownership, so access checks need both in one fetch.
func (r *FileRepository) GetWithFolder(ctx context.Context, id uuid.UUID) (*models.FileRecord, error) {
	query := `
		SELECT f.id, f.folder_id, f.storage_key, f.mime_type, f.size, f.original_name, f.created_at,
		       d.id, d.owner_id, d.name, d.created_at
		FROM files f
		JOIN folders d ON d.id = f.folder_id
		WHERE f.id = $1
	`

	executor := GetExecutor(ctx, r.db)
	file := &models.FileRecord{Folder: &models.Folder{}}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&file.ID,
		&file.FolderID,
		&file.StorageKey,
		&file.MimeType,
		&file.Size,
		&file.OriginalName,
		&file.CreatedAt,
		&file.Folder.ID,
		&file.Folder.OwnerID,
		&file.Folder.Name,
		&file.Folder.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("file not found %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *FileRepository) WithTx(tx repositories.Transaction) repositories.FileRepository {
	return &FileRepository{
		db:     r.db,
		logger: r.logger,
	}
}
