package app

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/connection"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/tenantconn"
)

func postgresConfigFromEnv() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		Port:     os.Getenv("DB_PORT"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
}

// BuildApp wires infrastructure, modules and routes onto the router and
// returns a cleanup func for graceful shutdown.
func BuildApp(router *gin.Engine, logger *zap.Logger) (func(), error) {
	cfg := postgresConfigFromEnv()

	controlDB, err := connection.ConnectGORMWithRetry(cfg, 5)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return nil, err
		}
	}

	registrar := tenantconn.NewSchemaRegistrar(tenantEntities(), logger)

	opts := []tenantconn.RegistryOption{
		// A handle whose schema could not be fully registered is not
		// worth caching; the next Get retries from scratch.
		tenantconn.WithAfterOpen(func(tenantID string, db *gorm.DB) error {
			for _, res := range registrar.EnsureSchema(tenantID, db, false) {
				if res.Status == tenantconn.StatusFailed {
					return res.Err
				}
			}
			return nil
		}),
		tenantconn.WithEvictHook(registrar.Forget),
	}
	if capStr := os.Getenv("TENANT_CACHE_SIZE"); capStr != "" {
		if capacity, err := strconv.Atoi(capStr); err == nil && capacity > 0 {
			opts = append(opts, tenantconn.WithCapacity(capacity))
		}
	}

	registry := tenantconn.NewRegistry(connection.TenantOpener(cfg), logger, opts...)

	registerModules(router, controlDB, registry, rdb, logger)

	cleanup := func() {
		registry.Close()
		if rdb != nil {
			rdb.Close()
		}
		if sqlDB, err := controlDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return cleanup, nil
}
