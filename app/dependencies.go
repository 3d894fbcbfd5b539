package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/auth"
	"github.com/revisetax/docs-gateway/config"
	"github.com/revisetax/docs-gateway/idp"
	"github.com/revisetax/docs-gateway/middleware"
	"github.com/revisetax/docs-gateway/policy"
	"github.com/revisetax/docs-gateway/repositories"
	"github.com/revisetax/docs-gateway/repositories/postgres"
	"github.com/revisetax/docs-gateway/services"
	"github.com/revisetax/docs-gateway/services/audit"
	"github.com/revisetax/docs-gateway/storage"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Admins    repositories.AdminRepository
	Users     repositories.UserRepository
	Files     repositories.FileRepository
	AuditLogs repositories.AuditRepository
	TxManager repositories.TransactionManager

	// Services
	AdminService *services.AdminService
	FileService  *services.FileAccessService
	AuditService *audit.AuditService

	// Identity and admission
	IDPClient *idp.Client
	Policy    *policy.Policy
	Resolver  *middleware.IdentityResolver

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
	RouteGate      *middleware.RouteGate

	// Auth
	authHandler *auth.Handler
}

// AuthHandler returns the auth handler for route wiring
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize services (audit, admin, file access)
	if err := deps.initServices(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize identity resolution and route admission
	deps.initGateway(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Admins = repos.Admins
	d.Users = repos.Users
	d.Files = repos.Files
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices initializes the audit writer, admin authority, and file guard
func (d *Dependencies) initServices(ctx context.Context, cfg *config.Config) error {
	d.AuditService = audit.NewAuditService(d.AuditLogs, d.Logger, audit.DefaultConfig())
	if err := d.AuditService.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	d.AdminService = services.NewAdminService(cfg.Gateway, d.Admins, d.TxManager, d.Logger)

	signer, err := storage.NewS3Signer(ctx, cfg.Storage, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage signer: %w", err)
	}
	d.FileService = services.NewFileAccessService(cfg.Storage, d.Users, d.Files, signer, d.Logger)

	return nil
}

// initGateway wires identity resolution, admission policy, and the gate
func (d *Dependencies) initGateway(cfg *config.Config) {
	d.IDPClient = idp.NewClient(cfg.Identity)
	d.Policy = policy.New(cfg.Gateway)
	d.Resolver = middleware.NewIdentityResolver(d.IDPClient, cfg.Identity.CookieName, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Resolver, d.Logger)
	d.RouteGate = middleware.NewRouteGate(d.Resolver, d.Policy, d.AdminService, d.AuditService, d.Logger)
	d.authHandler = auth.NewHandler(cfg, d.IDPClient, d.Logger)

	d.Logger.Info("gateway initialized",
		zap.String("protected_prefix", cfg.Gateway.ProtectedPrefix),
		zap.String("admin_prefix", cfg.Gateway.AdminPrefix))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain pending audit records before the database goes away
	if d.AuditService != nil {
		if err := d.AuditService.Stop(10 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
