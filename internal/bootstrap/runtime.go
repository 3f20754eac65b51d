// Package bootstrap initializes the process-wide runtime shared by commands.
package bootstrap

import (
	"context"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCategories ensures the built-in categories exist.
	SeedCategories bool
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedCategories {
		if err := EnsureCategories(ctx, db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}

	return db, r, nil
}

// EnsureCategories inserts any missing built-in category.
func EnsureCategories(ctx context.Context, db *gorm.DB) error {
	names := seed.DefaultCategories()
	if err := repository.NewCategoryRepository(db).EnsureNames(ctx, names); err != nil {
		return fmt.Errorf("failed to seed built-in categories: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "built-in categories ensured", "count", len(names))
	return nil
}
