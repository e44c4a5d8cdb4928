// Package main provides admin management utilities for Recipebox.
package main

import (
	"fmt"
	"os"

	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/repository"
	"recipebox/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := newRootCmd(openUserService).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openUserService connects to the configured database and Redis. The
// returned close func releases both.
func openUserService() (*service.UserService, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, nil, err
	}

	// A nil *redis.Client must not reach the repository as a Cmdable.
	var cacheClient redis.Cmdable
	if rdb != nil {
		cacheClient = rdb
	}
	svc := service.NewUserService(
		repository.NewUserRepository(db, cacheClient),
		repository.NewRecipeRepository(db),
	)

	closeFn := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = database.Close(db)
	}
	return svc, closeFn, nil
}
