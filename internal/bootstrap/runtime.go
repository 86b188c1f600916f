// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"microblog/internal/cache"
	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE after connecting.
	ApplySchema bool
}

// InitRuntime connects to the database and Redis, then applies the schema and the
// development fixture when asked to. A nil Redis client means Redis is unavailable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := ensureDevFixture(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to load development fixture: %w", err)
	}

	return db, rdb, nil
}

// ensureDevFixture loads SEED_FIXTURE into an empty development database.
func ensureDevFixture(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	path := strings.TrimSpace(cfg.SeedFixture)
	if path == "" || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fixture, err := seed.LoadFixture(f)
	if err != nil {
		return err
	}
	if err := seed.NewSeeder(db.WithContext(ctx), seed.Options{}).ApplyFixture(fixture); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development fixture loaded",
		"path", path, "users", len(fixture.Users), "metrics", len(fixture.Metrics))
	return nil
}
