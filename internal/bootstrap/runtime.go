// Package bootstrap wires the storage dependencies shared by the commands.
package bootstrap

import (
	"fmt"
	"log/slog"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// RequireRedis turns an unreachable Redis into an error instead of a
	// nil client.
	RequireRedis bool
}

// InitRuntime connects to the database and Redis. The returned Redis client
// is nil when Redis is unreachable and opts.RequireRedis is false.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.InitRedis(cfg.RedisURL)
	if err != nil {
		if opts.RequireRedis {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		middleware.Logger.Warn("Redis unavailable, continuing without it",
			slog.String("error", err.Error()))
		return db, nil, nil
	}

	middleware.Logger.Info("Redis connected successfully")
	return db, rdb, nil
}
