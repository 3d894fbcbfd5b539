package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/models"
	"github.com/revisetax/docs-gateway/repositories"
	"github.com/revisetax/docs-gateway/utils"
)

// AdminService decides and records administrator privilege. Privilege is a
// pure predicate over the identity's email; the durable admin record and the
// session marker only mirror what the predicate already granted.
type AdminService struct {
	cfg       config.GatewayConfig
	adminRepo repositories.AdminRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(cfg config.GatewayConfig, adminRepo repositories.AdminRepository, txManager repositories.TransactionManager, logger *zap.Logger) *AdminService {
	return &AdminService{
		cfg:       cfg,
		adminRepo: adminRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// IsPrivileged reports whether the identity qualifies as an administrator.
// Matching is case-insensitive: the email either contains the configured
// marker substring or ends with the reserved domain suffix.
func (s *AdminService) IsPrivileged(id *models.Identity) bool {
	if id == nil || id.Email == "" {
		return false
	}
	email := strings.ToLower(id.Email)
	if s.cfg.AdminEmailMarker != "" && strings.Contains(email, strings.ToLower(s.cfg.AdminEmailMarker)) {
		return true
	}
	if s.cfg.AdminEmailDomain != "" && strings.HasSuffix(email, "@"+strings.ToLower(s.cfg.AdminEmailDomain)) {
		return true
	}
	return false
}

// Authorize returns nil only when the identity holds administrator privilege.
// Used by the route gate for admin-class paths.
func (s *AdminService) Authorize(ctx context.Context, id *models.Identity) error {
	if id == nil {
		return ErrNoIdentity
	}
	if !s.IsPrivileged(id) {
		return ErrNotAdmin
	}
	return nil
}

// Login establishes the durable administrator state for a qualifying
// identity: the admin record keyed by auth_id and the session marker keyed by
// the identity id. Both writes are atomic upserts, so repeated or concurrent
// logins converge on one row each. Returns the stored record.
func (s *AdminService) Login(ctx context.Context, id *models.Identity) (*models.AdminRecord, error) {
	if id == nil {
		return nil, ErrNoIdentity
	}
	if id.Email == "" {
		return nil, ErrMissingEmail
	}
	if err := utils.ValidateEmail(id.Email); err != nil {
		return nil, WrapError(ErrorTypeValidation, "malformed email", err)
	}
	if !s.IsPrivileged(id) {
		s.logger.Info("admin login refused",
			zap.String("identity_id", id.ID))
		return nil, ErrNotAdmin
	}

	var stored *models.AdminRecord
	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		record, err := s.adminRepo.UpsertOnLogin(txCtx, models.NewAdminRecord(id.ID, id.Email, id.Name))
		if err != nil {
			return err
		}

		marker := &models.AdminSessionMarker{
			AdminID:   record.ID,
			SocketID:  id.ID,
			IsActive:  true,
			UpdatedAt: time.Now(),
		}
		if err := s.adminRepo.UpsertSessionMarker(txCtx, marker); err != nil {
			return err
		}

		stored = record
		return nil
	})
	if err != nil {
		return nil, WrapInternal("admin login failed", err)
	}

	s.logger.Info("admin login",
		zap.String("admin_id", stored.ID.String()),
		zap.String("identity_id", id.ID))
	return stored, nil
}

// Current returns the stored administrator record for the identity without
// writing anything. A qualifying identity that never logged in gets a
// not-found error, not an implicit record.
func (s *AdminService) Current(ctx context.Context, id *models.Identity) (*models.AdminRecord, error) {
	if id == nil {
		return nil, ErrNoIdentity
	}
	if !s.IsPrivileged(id) {
		return nil, ErrNotAdmin
	}

	record, err := s.adminRepo.GetByAuthID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, WrapInternal("admin lookup failed", err)
	}

	return record, nil
}
