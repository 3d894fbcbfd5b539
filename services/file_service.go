package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/repositories"
	"github.com/revisetax/docs-gateway/storage"
)

// FileAccessService guards read access to stored file content. A grant is
// issued only after the caller is mapped to a registered user and the file's
// owning folder belongs to that user. Any collaborator failure along the way
// is a deny, never an allow.
type FileAccessService struct {
	cfg      config.StorageConfig
	userRepo repositories.UserRepository
	fileRepo repositories.FileRepository
	signer   storage.URLSigner
	logger   *zap.Logger
}

// NewFileAccessService creates a new FileAccessService
func NewFileAccessService(cfg config.StorageConfig, userRepo repositories.UserRepository, fileRepo repositories.FileRepository, signer storage.URLSigner, logger *zap.Logger) *FileAccessService {
	return &FileAccessService{
		cfg:      cfg,
		userRepo: userRepo,
		fileRepo: fileRepo,
		signer:   signer,
		logger:   logger,
	}
}

// GrantAccess issues a time-limited access grant for the file if and only if
// the identity owns it. A zero or negative ttl falls back to the configured
// default; requests above the configured maximum are clamped down to it.
func (s *FileAccessService) GrantAccess(ctx context.Context, id *models.Identity, fileID uuid.UUID, ttl time.Duration) (*models.AccessGrant, error) {
	if id == nil {
		return nil, ErrNoIdentity
	}

	user, err := s.userRepo.GetByAuthID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("caller lookup failed", err)
	}

	file, err := s.fileRepo.GetWithFolder(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, WrapInternal("file lookup failed", err)
	}

	if !file.OwnedBy(user.ID) {
		s.logger.Info("file access refused",
			zap.String("file_id", fileID.String()),
			zap.String("user_id", user.ID.String()))
		return nil, ErrAccessDenied
	}

	ttl = s.clampTTL(ttl)
	url, err := s.signer.SignGetURL(ctx, file.StorageKey, ttl)
	if err != nil {
		return nil, WrapError(ErrorTypeInternal, "failed to issue access grant", err)
	}

	return &models.AccessGrant{
		FileID:    file.ID,
		URL:       url,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *FileAccessService) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.cfg.GrantTTL
	}
	if s.cfg.GrantMaxTTL > 0 && ttl > s.cfg.GrantMaxTTL {
		ttl = s.cfg.GrantMaxTTL
	}
	return ttl
}
