// Package app assembles the catalog components from configuration for the
// command line entry points.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/export"
	"github.com/pageza/recipe-catalog/backend/internal/logger"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/repository"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

const rateLimitPrefix = "rate_limit:recipe_writes"

// App holds the long lived components shared by the commands
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Metrics *metrics.Metrics
	Service *service.RecipeService

	redis *redis.Client
}

// New loads configuration, builds the logger and opens the database.
// Migrations are applied when migrate is true.
func New(migrate bool) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: config.IsDevelopment(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return NewWithConfig(cfg, log, migrate)
}

// NewWithConfig is like New but takes an already loaded config and logger
func NewWithConfig(cfg *config.Config, log *zap.Logger, migrate bool) (*App, error) {
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := database.Migrate(db, cfg, log); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	m := metrics.New()
	return &App{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Metrics: m,
		Service: service.NewRecipeService(repository.NewStore(db), log, m),
	}, nil
}

// Limiter returns the write rate limiter. Redis backs it when configured and
// reachable, otherwise an in-process limiter is used.
func (a *App) Limiter(ctx context.Context) middleware.Limiter {
	limits := middleware.RateLimitConfig{
		Window:    a.Config.RateLimitWindow,
		Limit:     a.Config.RateLimitWriteLimit,
		KeyPrefix: rateLimitPrefix,
	}

	if a.Config.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, a.Config, a.Logger)
		if err == nil {
			a.redis = client
			return middleware.NewRateLimiter(client, limits)
		}
		a.Logger.Warn("Redis unavailable, using in-process rate limiter", zap.Error(err))
	}
	return middleware.NewLocalRateLimiter(limits)
}

// Auth returns the token validator, or nil when no signing secret is configured
func (a *App) Auth() middleware.TokenValidator {
	if !a.Config.AuthEnabled() {
		return nil
	}
	return middleware.NewJWTValidator(a.Config.JWTSecret, middleware.TokenIssuer)
}

// Exporter returns the snapshot exporter, or nil when no bucket is configured
func (a *App) Exporter(ctx context.Context) (*export.Exporter, error) {
	if !a.Config.ExportEnabled() {
		return nil, nil
	}
	s3cfg, err := config.NewS3Config(ctx, a.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to configure export storage: %w", err)
	}
	return export.NewExporter(s3cfg.Client, s3cfg.BucketName, s3cfg.Prefix, a.Service, a.Logger).
		WithSigner(s3cfg), nil
}

// Dependencies returns everything the HTTP layer needs
func (a *App) Dependencies(ctx context.Context) (api.Dependencies, error) {
	deps := api.Dependencies{
		Service: a.Service,
		Logger:  a.Logger,
		DB:      a.DB,
		Metrics: a.Metrics,
		Auth:    a.Auth(),
		Limiter: a.Limiter(ctx),
	}

	exporter, err := a.Exporter(ctx)
	if err != nil {
		return deps, err
	}
	if exporter != nil {
		deps.Exporter = exporter
	}
	return deps, nil
}

// Close releases the database and redis connections and flushes the logger
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, database.Close(a.DB))
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
