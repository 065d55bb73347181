package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/config"
	"github.com/upb/blog-platform/database"
	"github.com/upb/blog-platform/handlers"
	"github.com/upb/blog-platform/internal/auth"
	"github.com/upb/blog-platform/internal/observability"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/repositories"
	"github.com/upb/blog-platform/repositories/sqlstore"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/services/audit"
	"github.com/upb/blog-platform/web"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *sqlstore.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	RepoFactory *sqlstore.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// Services
	Audit    *audit.Service
	Auth     *services.AuthService
	Posts    *services.PostService
	Comments *services.CommentService

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware
	Handlers       *Handlers
	Web            *web.Handler
}

// Handlers groups the JSON API handlers
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	Audit    *handlers.AuditHandler
}

// NewDependencies creates and wires up all application dependencies.
// The audit workers are not started; call Start before serving.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices(cfg)

	if err := deps.initHTTP(cfg); err != nil {
		_ = deps.RepoFactory.Close()
		return nil, fmt.Errorf("failed to initialize http layer: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase migrates the schema when configured and opens the pool
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database, d.Logger); err != nil {
			return err
		}
	}

	factory, err := sqlstore.NewRepositoryFactory(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.PingContext(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()
	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.Audit = audit.NewService(d.Repos.AuditLogs, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.Workers,
	})

	validator := validation.New()
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	d.Auth = services.NewAuthService(d.Repos.Users, d.Repos.Tokens, d.TxManager, hasher, tokens, validator, d.Audit, d.Metrics, d.Logger)
	d.Posts = services.NewPostService(d.Repos.Posts, d.TxManager, validator, d.Audit, d.Metrics, d.Logger)
	d.Comments = services.NewCommentService(d.Repos.Comments, d.Repos.Posts, d.TxManager, validator, d.Audit, d.Metrics, d.Logger)
}

func (d *Dependencies) initHTTP(cfg *config.Config) error {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Auth, d.Logger)
	d.Handlers = &Handlers{
		Health:   handlers.NewHealthHandler(d.DB.DB, d.Audit, Version, d.Logger),
		Auth:     handlers.NewAuthHandler(d.Auth, d.Logger),
		Posts:    handlers.NewPostHandler(d.Posts, d.Comments, d.Logger),
		Comments: handlers.NewCommentHandler(d.Comments, d.Logger),
		Audit:    handlers.NewAuditHandler(d.Audit, d.Logger),
	}

	pages, err := web.NewHandler(d.Auth, d.Posts, d.Comments, cfg.Auth.CookieSecure, d.Logger)
	if err != nil {
		return err
	}
	d.Web = pages
	return nil
}

// Start launches background workers
func (d *Dependencies) Start() error {
	return d.Audit.Start()
}

// Close stops the audit workers and closes the database. The audit queue is
// drained before the pool goes away.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Audit != nil {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Audit.Stop(timeout); err != nil && !errors.Is(err, audit.ErrNotRunning) {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
